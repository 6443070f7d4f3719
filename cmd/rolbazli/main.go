package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	dtoadmin "github.com/dropDatabas3/rolbazli/internal/http/dto/admin"
	dtoauth "github.com/dropDatabas3/rolbazli/internal/http/dto/auth"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stdin).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// readSecret reads a password without echo from a terminal, or one line
// from a pipe.
func readSecret(in *os.File, out io.Writer, prompt string) (string, error) {
	if in != nil && term.IsTerminal(int(in.Fd())) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		return string(b), err
	}
	var line string
	if _, err := fmt.Fscanln(in, &line); err != nil {
		return "", err
	}
	return line, nil
}

func newRootCmd(out io.Writer, in *os.File) *cobra.Command {
	cl := &client{
		BaseURL:   envOr("ROLBAZLI_URL", "http://localhost:8080"),
		Token:     os.Getenv("ROLBAZLI_TOKEN"),
		OutFormat: envOr("ROLBAZLI_OUT", "text"),
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		Out:       out,
	}

	root := &cobra.Command{
		Use:           "rolbazli",
		Short:         "Client for the rolbazli identity API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", cl.BaseURL, "API base URL (env ROLBAZLI_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", cl.Token, "Bearer token (env ROLBAZLI_TOKEN)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", cl.OutFormat, "Output format: json|text")

	root.AddCommand(loginCmd(cl, in), registerCmd(cl, in), meCmd(cl), usersCmd(cl), rolesCmd(cl))
	return root
}

func loginCmd(cl *client, in *os.File) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				var err error
				if password, err = readSecret(in, cmd.ErrOrStderr(), "Password: "); err != nil {
					return err
				}
			}
			body, err := cl.do(http.MethodPost, "/api/account/login", dtoauth.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}
			return cl.print(body, func(w io.Writer) error {
				var res dtoauth.AuthResponse
				if err := json.Unmarshal(body, &res); err != nil {
					return err
				}
				_, err := fmt.Fprintln(w, res.Token)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")
	return cmd
}

func registerCmd(cl *client, in *os.File) *cobra.Command {
	var req dtoauth.RegisterRequest
	var roles []string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				var err error
				if req.Password, err = readSecret(in, cmd.ErrOrStderr(), "Password: "); err != nil {
					return err
				}
			}
			// only send roles when the flag was given, so the server default applies otherwise
			if cmd.Flags().Changed("role") {
				req.Roles = append([]string{}, roles...)
			}
			body, err := cl.do(http.MethodPost, "/api/account/register", req)
			if err != nil {
				return err
			}
			return cl.print(body, func(w io.Writer) error {
				var res dtoauth.AuthResponse
				if err := json.Unmarshal(body, &res); err != nil {
					return err
				}
				fmt.Fprintln(w, res.Message)
				if len(res.FailedRoles) > 0 {
					fmt.Fprintf(w, "roles not assigned: %s\n", strings.Join(res.FailedRoles, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted when empty)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role to request (repeatable)")
	return cmd
}

func meCmd(cl *client) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account of the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.do(http.MethodGet, "/api/account/user-detail", nil)
			if err != nil {
				return err
			}
			return cl.print(body, func(w io.Writer) error {
				var u dtoauth.UserDetail
				if err := json.Unmarshal(body, &u); err != nil {
					return err
				}
				fmt.Fprintf(w, "id:     %s\nemail:  %s\nname:   %s\nroles:  %s\n",
					u.ID, u.Email, u.FullName, strings.Join(u.Roles, ", "))
				return nil
			})
		},
	}
}

func usersCmd(cl *client) *cobra.Command {
	users := &cobra.Command{Use: "users", Short: "Account operations"}
	users.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts with their roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.do(http.MethodGet, "/api/account/get-users", nil)
			if err != nil {
				return err
			}
			return cl.print(body, func(w io.Writer) error {
				var items []dtoauth.UserItem
				if err := json.Unmarshal(body, &items); err != nil {
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLES")
				for _, u := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.FullName, strings.Join(u.Roles, ","))
				}
				return tw.Flush()
			})
		},
	})
	return users
}

func rolesCmd(cl *client) *cobra.Command {
	roles := &cobra.Command{Use: "roles", Short: "Role operations"}

	message := func(body []byte) error {
		return cl.print(body, func(w io.Writer) error {
			var m dtoadmin.MessageResponse
			if err := json.Unmarshal(body, &m); err != nil {
				return err
			}
			_, err := fmt.Fprintln(w, m.Message)
			return err
		})
	}

	roles.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List roles with member counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.do(http.MethodGet, "/api/roles/get-roles", nil)
			if err != nil {
				return err
			}
			return cl.print(body, func(w io.Writer) error {
				var items []dtoadmin.RoleItem
				if err := json.Unmarshal(body, &items); err != nil {
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tUSERS")
				for _, r := range items {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", r.ID, r.Name, r.TotalUsers)
				}
				return tw.Flush()
			})
		},
	})

	roles.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.do(http.MethodPost, "/api/roles/create-role", dtoadmin.CreateRoleRequest{RoleName: args[0]})
			if err != nil {
				return err
			}
			return message(body)
		},
	})

	roles.AddCommand(&cobra.Command{
		Use:   "rename ROLE_ID NEW_NAME",
		Short: "Rename a role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.do(http.MethodPut, "/api/roles/"+args[0], dtoadmin.UpdateRoleRequest{Name: args[1]})
			if err != nil {
				return err
			}
			return message(body)
		},
	})

	roles.AddCommand(&cobra.Command{
		Use:   "delete ROLE_ID",
		Short: "Delete a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.do(http.MethodDelete, "/api/roles/"+args[0], nil)
			if err != nil {
				return err
			}
			return message(body)
		},
	})

	for _, op := range []struct{ use, short, path string }{
		{"assign USER_ID ROLE_ID", "Grant a role to a user", "/api/roles/assign-role"},
		{"revoke USER_ID ROLE_ID", "Remove a role from a user", "/api/roles/revoke-role"},
	} {
		path := op.path
		roles.AddCommand(&cobra.Command{
			Use:   op.use,
			Short: op.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				body, err := cl.do(http.MethodPost, path, dtoadmin.MembershipRequest{UserID: args[0], RoleID: args[1]})
				if err != nil {
					return err
				}
				return message(body)
			},
		})
	}
	return roles
}
