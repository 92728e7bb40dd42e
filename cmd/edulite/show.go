package main

import (
	"fmt"
	"os"
	"strconv"

	"edulite-cli/internal/api"
	"edulite-cli/internal/edu"

	"github.com/spf13/cobra"
)

// show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Browse and edit slideshows",
}

func showListOptions(cmd *cobra.Command) api.ShowListOptions {
	var opts api.ShowListOptions
	opts.Page, _ = cmd.Flags().GetInt("page")
	opts.Mine, _ = cmd.Flags().GetBool("mine")
	visibility, _ := cmd.Flags().GetString("visibility")
	opts.Visibility = edu.Visibility(visibility)
	opts.Subject, _ = cmd.Flags().GetString("subject")
	opts.Language, _ = cmd.Flags().GetString("language")
	return opts
}

func printShowPage(page *api.Page[edu.Slideshow]) {
	if len(page.Results) == 0 {
		fmt.Println("No slideshows found.")
		return
	}
	for _, show := range page.Results {
		published := " "
		if show.Published {
			published = "P"
		}
		fmt.Printf("#%-5d %s %-9s %3d slides  v%-3d %s\n",
			show.ID, published, show.Visibility, show.SlideCount, show.Version, show.Title)
	}
	fmt.Printf("\nPage %d of %d (%d total)\n", page.CurrentPage, page.TotalPages, page.Count)
}

var showListCmd = &cobra.Command{
	Use:   "list",
	Short: "List slideshows",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowList")
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.ListSlideshows(cmd.Context(), showListOptions(cmd))
		if err != nil {
			return err
		}
		printShowPage(page)
		return nil
	},
}

var showSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search slideshows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowSearch")
		if err != nil {
			return err
		}
		defer a.Close()

		page, err := a.SearchSlideshows(cmd.Context(), args[0], showListOptions(cmd))
		if err != nil {
			return err
		}
		printShowPage(page)
		return nil
	},
}

var showViewCmd = &cobra.Command{
	Use:   "view ID",
	Short: "View a slideshow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}

		a, err := newApp("ShowView")
		if err != nil {
			return err
		}
		defer a.Close()

		deck, err := a.LoadSlideshowComplete(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("%s (#%d, version %d)\n", deck.Show.Title, deck.Show.ID, deck.Show.Version)
		if deck.Show.Description != "" {
			fmt.Printf("%s\n", deck.Show.Description)
		}
		fmt.Println()
		for i, slide := range deck.SlidesInOrder() {
			title := slide.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%3d. %s\n", i+1, title)
		}
		return nil
	},
}

var showNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new slideshow draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowNew")
		if err != nil {
			return err
		}
		defer a.Close()

		session, outcome, err := a.NewSlideshow()
		if err != nil {
			return err
		}

		if title, _ := cmd.Flags().GetString("title"); title != "" {
			if err := session.SetTitle(title); err != nil {
				return err
			}
		}

		draft := session.Draft()
		fmt.Printf("Draft started (%s): %q, %d slide(s)\n", outcome, draft.Title, len(draft.Slides))
		return nil
	},
}

var showImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import an HTML document as a slideshow draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ShowImport")
		if err != nil {
			return err
		}
		defer a.Close()

		title, _ := cmd.Flags().GetString("title")
		session, err := a.ImportDocument(args[0], title)
		if err != nil {
			return err
		}

		draft := session.Draft()
		fmt.Printf("Imported %d slide(s) into draft %q\n", len(draft.Slides), draft.Title)
		return nil
	},
}

var showEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Open the local draft for a slideshow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}

		a, err := newApp("ShowEdit")
		if err != nil {
			return err
		}
		defer a.Close()

		session, outcome, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}

		draft := session.Draft()
		fmt.Printf("%s: %q, %d slide(s), version %d\n", outcome, draft.Title, len(draft.Slides), draft.Version)
		if session.Dirty() {
			fmt.Println("Draft has unsaved changes.")
		}
		if session.Unverified() {
			fmt.Println("Warning: server unreachable, draft version not verified.")
		}
		return nil
	},
}

var showSetCmd = &cobra.Command{
	Use:   "set ID",
	Short: "Update slideshow metadata in the local draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}

		a, err := newApp("ShowSet")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			if err := session.SetTitle(title); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("description") {
			desc, _ := cmd.Flags().GetString("description")
			if err := session.SetDescription(desc); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("visibility") {
			visibility, _ := cmd.Flags().GetString("visibility")
			if err := session.SetVisibility(edu.Visibility(visibility)); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("published") {
			published, _ := cmd.Flags().GetBool("published")
			if err := session.SetPublished(published); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("language") || cmd.Flags().Changed("country") ||
			cmd.Flags().Changed("subject") {
			draft := session.Draft()
			language, country, subject := draft.Language, draft.Country, draft.Subject
			if cmd.Flags().Changed("language") {
				language, _ = cmd.Flags().GetString("language")
			}
			if cmd.Flags().Changed("country") {
				country, _ = cmd.Flags().GetString("country")
			}
			if cmd.Flags().Changed("subject") {
				subject, _ = cmd.Flags().GetString("subject")
			}
			if err := session.SetMetadata(language, country, subject); err != nil {
				return err
			}
		}

		draft := session.Draft()
		fmt.Printf("Draft updated: %q (%s)\n", draft.Title, draft.Visibility)
		return nil
	},
}

var showSaveCmd = &cobra.Command{
	Use:   "save ID",
	Short: "Push the local draft to the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}

		a, err := newApp("ShowSave")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}

		if err := session.Save(cmd.Context()); err != nil {
			if api.IsConflict(err) {
				return fmt.Errorf("the slideshow changed on the server; run 'edulite show discard %d' to pick up the new version", id)
			}
			return err
		}

		draft := session.Draft()
		fmt.Printf("Saved slideshow #%d at version %d\n", draft.ShowID, draft.Version)
		return nil
	},
}

var showDiscardCmd = &cobra.Command{
	Use:   "discard ID",
	Short: "Discard the local draft and reload from the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}

		a, err := newApp("ShowDiscard")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}

		if err := session.Reload(cmd.Context()); err != nil {
			return err
		}

		draft := session.Draft()
		fmt.Printf("Draft reset to server version %d\n", draft.Version)
		return nil
	},
}

var showExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a slideshow as a standalone HTML deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}
		target, _ := cmd.Flags().GetString("target")

		a, err := newApp("ShowExport")
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.ExportSlideshow(cmd.Context(), id, target)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported deck %s to target %s\n", name, target)
		return nil
	},
}

var showRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a slideshow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}

		a, err := newApp("ShowDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteSlideshow(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted slideshow #%d\n", id)
		return nil
	},
}

// slide command operates on the local draft of a slideshow.
var slideCmd = &cobra.Command{
	Use:   "slide",
	Short: "Edit slides in a local draft",
}

var slideAddCmd = &cobra.Command{
	Use:   "add SHOW_ID",
	Short: "Insert an empty slide into the draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}
		at, _ := cmd.Flags().GetInt("at")

		a, err := newApp("SlideAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}
		if at < 0 {
			at = len(session.Draft().Slides)
		}
		index, err := session.InsertSlide(at)
		if err != nil {
			return err
		}
		fmt.Printf("Inserted slide at position %d\n", index+1)
		return nil
	},
}

var slideSetCmd = &cobra.Command{
	Use:   "set SHOW_ID INDEX",
	Short: "Update a slide in the draft",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid slide index: %s", args[1])
		}

		a, err := newApp("SlideSet")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}

		draft := session.Draft()
		if index < 1 || index > len(draft.Slides) {
			return fmt.Errorf("no slide at position %d", index)
		}
		slide := draft.Slides[index-1]

		title := slide.Title
		if cmd.Flags().Changed("title") {
			title, _ = cmd.Flags().GetString("title")
		}
		notes := slide.Notes
		if cmd.Flags().Changed("notes") {
			notes, _ = cmd.Flags().GetString("notes")
		}
		content := slide.Content
		if file, _ := cmd.Flags().GetString("content-file"); file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading content file: %w", err)
			}
			content = string(data)
		}

		if err := session.UpdateSlide(index-1, title, content, notes); err != nil {
			return err
		}
		fmt.Printf("Updated slide %d\n", index)
		return nil
	},
}

var slideMvCmd = &cobra.Command{
	Use:   "mv SHOW_ID FROM TO",
	Short: "Move a slide within the draft",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position: %s", args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position: %s", args[2])
		}

		a, err := newApp("SlideMove")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := session.MoveSlide(from-1, to-1); err != nil {
			return err
		}
		fmt.Printf("Moved slide %d to position %d\n", from, to)
		return nil
	},
}

var slideDupCmd = &cobra.Command{
	Use:   "dup SHOW_ID INDEX",
	Short: "Duplicate a slide in the draft",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid slide index: %s", args[1])
		}

		a, err := newApp("SlideDuplicate")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := session.DuplicateSlide(index - 1); err != nil {
			return err
		}
		fmt.Printf("Duplicated slide %d\n", index)
		return nil
	},
}

var slideRmCmd = &cobra.Command{
	Use:   "rm SHOW_ID INDEX",
	Short: "Delete a slide from the draft",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid slide index: %s", args[1])
		}

		a, err := newApp("SlideDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		session, _, err := a.EditSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := session.DeleteSlide(index - 1); err != nil {
			return err
		}
		fmt.Printf("Deleted slide %d\n", index)
		return nil
	},
}

// preview command
var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Render a markdown file through the server renderer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		a, err := newApp("Preview")
		if err != nil {
			return err
		}
		defer a.Close()

		previewer := a.Previewer()
		defer previewer.Close()

		previewer.Request(args[0], string(data))
		result := <-previewer.Results()
		if result.Err != nil {
			return fmt.Errorf("rendering preview: %w", result.Err)
		}

		fmt.Println(result.HTML)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{showListCmd, showSearchCmd} {
		c.Flags().Int("page", 0, "Page number")
		c.Flags().Bool("mine", false, "Only my slideshows")
		c.Flags().String("visibility", "", "Filter by visibility (public, unlisted, private)")
		c.Flags().String("subject", "", "Filter by subject")
		c.Flags().String("language", "", "Filter by language")
	}
	showNewCmd.Flags().String("title", "", "Draft title")
	showImportCmd.Flags().String("title", "", "Draft title")
	showSetCmd.Flags().String("title", "", "Slideshow title")
	showSetCmd.Flags().String("description", "", "Slideshow description")
	showSetCmd.Flags().String("visibility", "", "Visibility (public, unlisted, private)")
	showSetCmd.Flags().Bool("published", false, "Whether the slideshow is published")
	showSetCmd.Flags().String("language", "", "Language")
	showSetCmd.Flags().String("country", "", "Country")
	showSetCmd.Flags().String("subject", "", "Subject")
	showExportCmd.Flags().String("target", "local", "Export target name from the config")

	showCmd.AddCommand(showListCmd)
	showCmd.AddCommand(showSearchCmd)
	showCmd.AddCommand(showViewCmd)
	showCmd.AddCommand(showNewCmd)
	showCmd.AddCommand(showImportCmd)
	showCmd.AddCommand(showEditCmd)
	showCmd.AddCommand(showSetCmd)
	showCmd.AddCommand(showSaveCmd)
	showCmd.AddCommand(showDiscardCmd)
	showCmd.AddCommand(showExportCmd)
	showCmd.AddCommand(showRmCmd)

	slideAddCmd.Flags().Int("at", -1, "Position to insert at (1-based, default append)")
	slideSetCmd.Flags().String("title", "", "Slide title")
	slideSetCmd.Flags().String("notes", "", "Speaker notes")
	slideSetCmd.Flags().String("content-file", "", "File with the slide's markdown content")
	slideCmd.AddCommand(slideAddCmd)
	slideCmd.AddCommand(slideSetCmd)
	slideCmd.AddCommand(slideMvCmd)
	slideCmd.AddCommand(slideDupCmd)
	slideCmd.AddCommand(slideRmCmd)

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(slideCmd)
	rootCmd.AddCommand(previewCmd)
}
