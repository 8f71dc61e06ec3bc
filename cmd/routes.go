// ABOUTME: Route inspection commands: list the route table and resolve a path
// ABOUTME: Both evaluate the navigation guard against the stored session

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/router"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List routes and whether the current session may enter them",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runRoutes)
	},
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Resolve a path through redirects and the navigation guard",
	Long: `Resolve a path the way the TUI would navigate to it and print where it lands.

Exits 1 when the guard redirected away from the requested path.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runOpen(ctx, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(openCmd)
}

type routeRow struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Redirect      string `json:"redirect,omitempty"`
	RequiresAuth  bool   `json:"requires_auth"`
	RequiresAdmin bool   `json:"requires_admin"`
	Access        string `json:"access"`
}

func runRoutes(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(app *App) int {
		table := app.Navigator.Table()
		rows := make([]routeRow, 0, len(table.Routes()))
		for _, r := range table.Routes() {
			row := routeRow{
				Name:          r.Name,
				Path:          r.Path,
				Redirect:      r.Redirect,
				RequiresAuth:  r.RequiresAuth,
				RequiresAdmin: r.RequiresAdmin,
				Access:        "allowed",
			}
			if r.Redirect != "" {
				row.Access = "redirect " + r.Redirect
			} else if m, ok := table.Resolve(router.Location{Path: samplePath(table, r)}); ok {
				if d := router.Guard(m, app.Session); !d.Allow {
					row.Access = "-> " + d.Redirect.String()
				}
			}
			rows = append(rows, row)
		}

		if IsJSONOutput() {
			printJSON(w, rows)
			return exitOK
		}

		tw := newTable(w)
		fmt.Fprintln(tw, "NAME\tPATH\tAUTH\tADMIN\tACCESS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Path, yesNo(r.RequiresAuth), yesNo(r.RequiresAdmin), r.Access)
		}
		tw.Flush()
		return exitOK
	})
}

// samplePath fills pattern variables so the guard can be evaluated
func samplePath(table *router.Table, r router.Route) string {
	if p, err := table.URL(r.Name); err == nil {
		return p
	}
	if p, err := table.URL(r.Name, "id", "1"); err == nil {
		return p
	}
	return r.Path
}

func runOpen(ctx context.Context, w io.Writer, path string) int {
	return withApp(ctx, w, func(app *App) int {
		nav, err := app.Navigator.Navigate(path)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}

		if IsJSONOutput() {
			printJSON(w, map[string]any{
				"requested": nav.Requested.String(),
				"location":  nav.To.String(),
				"route":     nav.Route.Name,
				"params":    nav.Params,
				"denied":    nav.Denied,
				"reason":    nav.Reason,
			})
		} else {
			fmt.Fprintf(w, "Location: %s\n", nav.To)
			fmt.Fprintf(w, "Route:    %s\n", nav.Route.Name)
			if nav.Denied {
				fmt.Fprintf(w, "Denied:   %s\n", nav.Reason)
			}
		}

		if nav.Denied {
			return exitRejected
		}
		return exitOK
	})
}
