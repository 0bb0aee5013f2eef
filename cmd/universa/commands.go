package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/universa-labs/universa-go/internal/config"
	"github.com/universa-labs/universa-go/internal/dispatch"
)

// request runs one dispatched call and renders the outcome.
func request(cmd *cobra.Command, endpoint, method string, body map[string]any, query map[string]string) error {
	sess, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := sess.dispatcher.Request(cmd.Context(), endpoint, method, body, query)
	if err != nil {
		return renderError(err)
	}
	return printDocument(doc)
}

// --- profiles ---

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage member profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, "/profiles/", http.MethodGet, nil, nil)
	},
}

var profilesGetCmd = &cobra.Command{
	Use:   "get <profile-id>",
	Short: "Fetch one profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, "/profiles/"+args[0], http.MethodGet, nil, nil)
	},
}

var profilesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		tagsStr, _ := cmd.Flags().GetString("tags")

		body := map[string]any{}
		if name != "" {
			body["name"] = name
		}
		if description != "" {
			body["description"] = description
		}
		if tagsStr != "" {
			tags := strings.Split(tagsStr, ",")
			for i := range tags {
				tags[i] = strings.TrimSpace(tags[i])
			}
			body["tags"] = tags
		}

		return request(cmd, "/profiles/", http.MethodPost, body, nil)
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, "/profiles/"+args[0], http.MethodDelete, nil, nil)
	},
}

// --- groups ---

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, "/groups/", http.MethodGet, nil, nil)
	},
}

var groupsGetCmd = &cobra.Command{
	Use:   "get <group-id>",
	Short: "Fetch one group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, "/groups/"+args[0], http.MethodGet, nil, nil)
	},
}

// --- match ---

var matchCmd = &cobra.Command{
	Use:   "match <profile-id>",
	Short: "Find matches for a profile, best first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		groups, _ := cmd.Flags().GetBool("groups")

		endpoint := fmt.Sprintf("/matching/profile/%s/matches", args[0])
		if groups {
			endpoint = fmt.Sprintf("/matching/profile/%s/groups", args[0])
		}
		return request(cmd, endpoint, http.MethodGet, nil,
			map[string]string{"limit": strconv.Itoa(limit)})
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend connectivity and session mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		mode := sess.dispatcher.Mode()
		printStatus("API", "%s", sess.cfg.API.BaseURL)
		if mode == dispatch.Live {
			printStatus("Backend", "reachable")
		} else {
			printStatus("Backend", "unreachable (simulation active)")
		}
		printStatus("Mode", "%s", mode)

		doc, err := sess.dispatcher.Request(cmd.Context(), "/health", http.MethodGet, nil, nil)
		if err != nil {
			return renderError(err)
		}
		return printDocument(doc)
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, info := range config.ShowAll(cfg) {
			printStatus(info.Key, "%s", info.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(args[0], args[1]); err != nil {
			printError("valid keys: %s", strings.Join(config.ValidKeys(), ", "))
			return err
		}
		printSuccess("Set %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	profilesCreateCmd.Flags().String("name", "", "display name")
	profilesCreateCmd.Flags().String("description", "", "free-form description")
	profilesCreateCmd.Flags().String("tags", "", "comma-separated tags")

	matchCmd.Flags().Int("limit", 10, "maximum number of results")
	matchCmd.Flags().Bool("groups", false, "rank groups instead of profiles")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesGetCmd)
	profilesCmd.AddCommand(profilesCreateCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)

	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsGetCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
