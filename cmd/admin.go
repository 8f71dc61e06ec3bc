// ABOUTME: Admin commands: dashboard stats, moderation queue and user management
// ABOUTME: Guarded by the admin routes; the backend re-checks privileges on every call

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/overview"
	"github.com/materialhub/materialhub-cli/internal/router"
)

var adminPage client.PageParams

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderation and user management (admins only)",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the admin dashboard",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(runAdminStats)
	},
}

var adminPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List materials awaiting moderation",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runAdminPending(ctx, w, adminPage)
		})
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runAdminUsers(ctx, w, adminPage)
		})
	},
}

// adminAction is one mutating admin subcommand taking an id
type adminAction struct {
	use, short, route string
	call              func(a *client.AdminAPI, ctx context.Context, id int) (*models.MessageResult, error)
}

var adminActions = []adminAction{
	{"approve <id>", "Approve a pending material", router.AdminMaterialsPath, (*client.AdminAPI).ApproveMaterial},
	{"reject <id>", "Reject a pending material", router.AdminMaterialsPath, (*client.AdminAPI).RejectMaterial},
	{"delete <id>", "Delete a material", router.AdminMaterialsPath, (*client.AdminAPI).DeleteMaterial},
	{"toggle-active <user-id>", "Activate or deactivate a user", router.AdminUsersPath, (*client.AdminAPI).ToggleUserActive},
	{"toggle-admin <user-id>", "Grant or revoke admin", router.AdminUsersPath, (*client.AdminAPI).ToggleUserAdmin},
}

func init() {
	for _, c := range []*cobra.Command{adminPendingCmd, adminUsersCmd} {
		c.Flags().IntVar(&adminPage.Page, "page", 1, "Page number")
		c.Flags().IntVar(&adminPage.Size, "size", 20, "Page size")
	}

	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminPendingCmd)
	adminCmd.AddCommand(adminUsersCmd)
	for _, action := range adminActions {
		adminCmd.AddCommand(action.command())
	}
	rootCmd.AddCommand(adminCmd)
}

func (a adminAction) command() *cobra.Command {
	return &cobra.Command{
		Use:   a.use,
		Short: a.short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runCommand(func(ctx context.Context, w io.Writer) int {
				return runAdminAction(ctx, w, a, args[0])
			})
		},
	}
}

func runAdminAction(ctx context.Context, w io.Writer, action adminAction, rawID string) int {
	id, ok := parseID(w, rawID)
	if !ok {
		return exitError
	}
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, action.route); !ok {
			return exitRejected
		}

		res, err := action.call(app.Client.Admin(), ctx, id)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, res)
		} else {
			fmt.Fprintln(w, res.Message)
		}
		return exitOK
	})
}

func runAdminStats(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, router.AdminPath); !ok {
			return exitRejected
		}

		ov, err := overview.Load(ctx, app.Client.Admin())
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, map[string]any{
				"stats":         ov.Stats,
				"approval_rate": ov.ApprovalRate(),
				"admins":        ov.AdminCount(),
				"pending":       ov.Pending,
			})
			return exitOK
		}

		s := ov.Stats
		fmt.Fprintf(w, "Materials: %d total, %d approved, %d pending (%.0f%% approved)\n",
			s.TotalMaterials, s.ApprovedMaterials, s.PendingMaterials, ov.ApprovalRate())
		fmt.Fprintf(w, "Users:     %d total, %d active, %d admins\n", s.TotalUsers, s.ActiveUsers, ov.AdminCount())
		if len(ov.Pending) > 0 {
			fmt.Fprintln(w, "\nOldest in queue:")
			tw := newTable(w)
			for _, m := range ov.Pending {
				fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", m.ID, truncate(m.Title, 40), m.Category, m.Uploader.Username)
			}
			tw.Flush()
		}
		return exitOK
	})
}

func runAdminPending(ctx context.Context, w io.Writer, p client.PageParams) int {
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, router.AdminMaterialsPath); !ok {
			return exitRejected
		}

		page, err := app.Client.Admin().PendingMaterials(ctx, p)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, page)
			return exitOK
		}
		if len(page.Materials) == 0 {
			fmt.Fprintln(w, "Moderation queue is empty")
			return exitOK
		}
		formatMaterialsTable(w, page)
		return exitOK
	})
}

func runAdminUsers(ctx context.Context, w io.Writer, p client.PageParams) int {
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, router.AdminUsersPath); !ok {
			return exitRejected
		}

		users, err := app.Client.Admin().Users(ctx, p)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, users)
			return exitOK
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tACTIVE\tADMIN\tMATERIALS")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", u.ID, u.Username, u.Email, yesNo(u.IsActive), yesNo(u.IsAdmin), u.MaterialsCount)
		}
		tw.Flush()
		return exitOK
	})
}
