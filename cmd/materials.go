// ABOUTME: Material commands: list, show, like, upload and the category/map catalogs
// ABOUTME: Each command enters its route through the guard before calling the backend

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/materialhub/materialhub-cli/internal/catalog"
	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/media"
	"github.com/materialhub/materialhub-cli/internal/recent"
	"github.com/materialhub/materialhub-cli/internal/router"
)

var (
	listParams client.ListParams

	uploadTitle       string
	uploadCategory    string
	uploadDescription string
	uploadMap         string
	uploadTags        string
	uploadForce       bool
)

var materialsCmd = &cobra.Command{
	Use:     "materials",
	Aliases: []string{"m"},
	Short:   "Browse and upload materials",
}

var materialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List approved materials",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runMaterialsList(ctx, w, listParams)
		})
	},
}

var materialsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one material",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runMaterialShow(ctx, w, args[0])
		})
	},
}

var materialsLikeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "Like a material",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runMaterialLike(ctx, w, args[0])
		})
	},
}

var materialsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a media file for moderation",
	Long: `Upload an image, GIF or video. The file is checked locally against the
accepted extensions and the 50 MB limit first; use --force to send it anyway.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runMaterialUpload(ctx, w, args[0], client.UploadRequest{
				Title:       uploadTitle,
				Category:    uploadCategory,
				Description: uploadDescription,
				MapName:     uploadMap,
				Tags:        uploadTags,
			}, uploadForce)
		})
	},
}

var materialsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List material categories",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runCatalog(ctx, w, true)
		})
	},
}

var materialsMapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List maps that have materials",
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer) int {
			return runCatalog(ctx, w, false)
		})
	},
}

func init() {
	f := materialsListCmd.Flags()
	f.IntVar(&listParams.Page, "page", 1, "Page number")
	f.IntVar(&listParams.Size, "size", 20, "Page size")
	f.StringVar(&listParams.Category, "category", "", "Filter by category value")
	f.StringVar(&listParams.MapName, "map", "", "Filter by map name")
	f.StringVarP(&listParams.Search, "search", "s", "", "Search in titles and descriptions")

	u := materialsUploadCmd.Flags()
	u.StringVarP(&uploadTitle, "title", "t", "", "Title (required)")
	u.StringVarP(&uploadCategory, "category", "c", "", "Category value (required, see 'materials categories')")
	u.StringVarP(&uploadDescription, "description", "d", "", "Description")
	u.StringVar(&uploadMap, "map", "", "Map name")
	u.StringVar(&uploadTags, "tags", "", "Comma-separated tags")
	u.BoolVar(&uploadForce, "force", false, "Upload even if local checks fail")

	materialsCmd.AddCommand(materialsListCmd)
	materialsCmd.AddCommand(materialsShowCmd)
	materialsCmd.AddCommand(materialsLikeCmd)
	materialsCmd.AddCommand(materialsUploadCmd)
	materialsCmd.AddCommand(materialsCategoriesCmd)
	materialsCmd.AddCommand(materialsMapsCmd)
	rootCmd.AddCommand(materialsCmd)
}

// parseID validates a positive integer id argument
func parseID(w io.Writer, raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Error: invalid id %q\n", raw)
		return 0, false
	}
	return id, true
}

func runMaterialsList(ctx context.Context, w io.Writer, p client.ListParams) int {
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, router.MaterialsPath); !ok {
			return exitRejected
		}

		page, err := app.Client.Materials().List(ctx, p)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, page)
			return exitOK
		}
		if len(page.Materials) == 0 {
			fmt.Fprintln(w, "No materials found")
			return exitOK
		}
		formatMaterialsTable(w, page)
		return exitOK
	})
}

func runMaterialShow(ctx context.Context, w io.Writer, rawID string) int {
	id, ok := parseID(w, rawID)
	if !ok {
		return exitError
	}
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, fmt.Sprintf("/materials/%d", id)); !ok {
			return exitRejected
		}

		m, err := app.Client.Materials().Get(ctx, id)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, map[string]any{"material": m, "file_url": app.Client.FileURL(m.FilePath)})
			return exitOK
		}
		fmt.Fprintln(w, formatMaterialHuman(m, app.Client.FileURL(m.FilePath)))
		return exitOK
	})
}

func runMaterialLike(ctx context.Context, w io.Writer, rawID string) int {
	id, ok := parseID(w, rawID)
	if !ok {
		return exitError
	}
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, fmt.Sprintf("/materials/%d", id)); !ok {
			return exitRejected
		}

		res, err := app.Client.Materials().Like(ctx, id)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, res)
			return exitOK
		}
		fmt.Fprintf(w, "Liked material %d (%d likes)\n", id, res.Likes)
		return exitOK
	})
}

func runMaterialUpload(ctx context.Context, w io.Writer, path string, req client.UploadRequest, force bool) int {
	return withApp(ctx, w, func(app *App) int {
		if _, ok := app.Enter(w, router.UploadPath); !ok {
			return exitRejected
		}

		info, err := media.Inspect(path)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		for _, warning := range info.Warnings {
			fmt.Fprintf(w, "Warning: %s\n", warning)
		}
		if !info.OK() && !force {
			fmt.Fprintln(w, "Not uploading; pass --force to send it anyway.")
			return exitRejected
		}

		p := newPrompter(w)
		if req.Title == "" {
			if req.Title, err = p.Text("Title"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
		}
		if req.Category == "" {
			if req.Category, err = p.Text("Category"); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitError
			}
		}

		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitError
		}
		defer f.Close()
		req.FileName = info.Name
		req.File = f

		m, err := app.Client.Materials().Upload(ctx, req)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if err := recent.New(app.Config.ConfigDir).Add(path); err != nil {
			app.Logger.Warn("failed to remember upload", "path", path, "error", err)
		}

		if IsJSONOutput() {
			printJSON(w, m)
			return exitOK
		}
		fmt.Fprintf(w, "Uploaded %q as material %d (%s, %s). It is visible once an admin approves it.\n",
			m.Title, m.ID, m.FileType, media.HumanSize(info.Size))
		return exitOK
	})
}

// runCatalog prints categories (true) or maps (false)
func runCatalog(ctx context.Context, w io.Writer, categories bool) int {
	return withApp(ctx, w, func(app *App) int {
		loader := catalog.NewLoader(app.Client.Materials(), catalog.DefaultTTL)
		defer loader.Close()

		cat, err := loader.Load(ctx)
		if err != nil {
			return exitCodeFor(w, err)
		}

		if categories {
			if IsJSONOutput() {
				printJSON(w, cat.Categories)
				return exitOK
			}
			tw := newTable(w)
			fmt.Fprintln(tw, "VALUE\tLABEL")
			for _, c := range cat.Categories {
				fmt.Fprintf(tw, "%s\t%s\n", c.Value, c.Label)
			}
			tw.Flush()
			return exitOK
		}

		if IsJSONOutput() {
			printJSON(w, cat.Maps)
			return exitOK
		}
		if len(cat.Maps) == 0 {
			fmt.Fprintln(w, "No maps yet")
			return exitOK
		}
		fmt.Fprintln(w, strings.Join(cat.Maps, "\n"))
		return exitOK
	})
}
