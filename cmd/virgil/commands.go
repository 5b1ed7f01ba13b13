package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/virgil/internal/config"
	"github.com/gubarz/virgil/internal/gitstate"
	"github.com/gubarz/virgil/internal/ui"
	"github.com/gubarz/virgil/internal/walkthrough"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a walkthrough for problems",
	Long: `Check a Markdown source or walkthrough JSON file.

Reports compile warnings, missing titles, broken parent links, malformed
locations, conflicting base references and a remote that does not match
the origin of the current repository. Exits non-zero when anything is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var commentCmd = &cobra.Command{
	Use:   "comment <file> <stepId> <text>",
	Short: "Add a comment to a step of a walkthrough JSON file",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runComment,
}

var baseCmd = &cobra.Command{
	Use:   "base <file>",
	Short: "Resolve the base commit used for diff steps",
	Args:  cobra.ExactArgs(1),
	RunE:  runBase,
}

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print steps in navigation order",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Step through a walkthrough interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	commentCmd.Flags().String("author", "", "Comment author (defaults to config author)")
	viper.BindPFlag("author", commentCmd.Flags().Lookup("author"))
}

func runValidate(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)
	path := args[0]

	wt, warnings, err := loadWalkthrough(path)
	if err != nil {
		return err
	}

	opts := walkthrough.ValidateOptions{}
	if p := gitProvider(filepath.Dir(path)); p != nil {
		opts.WorkspaceRemote = p.Remote()
	}
	warnings = append(warnings, walkthrough.Validate(wt, opts)...)

	if len(warnings) == 0 {
		fmt.Printf("%s: ok (%d steps)\n", path, len(wt.Steps))
		return nil
	}
	printWarnings(os.Stderr, path, warnings)
	return fmt.Errorf("%d warning(s)", len(warnings))
}

func runComment(cmd *cobra.Command, args []string) error {
	path := args[0]
	if isMarkdown(path) {
		return fmt.Errorf("comments are stored in walkthrough JSON; convert %s first", path)
	}

	stepID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid step id %q", args[1])
	}

	wt, err := walkthrough.Load(path)
	if err != nil {
		return err
	}
	c, err := walkthrough.AddComment(wt, stepID, config.GetAuthor(), strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	if err := walkthrough.Save(path, wt); err != nil {
		return err
	}

	fmt.Println(c.ID)
	return nil
}

func runBase(cmd *cobra.Command, args []string) error {
	path := args[0]
	wt, _, err := loadWalkthrough(path)
	if err != nil {
		return err
	}

	if refs := wt.Repository.BaseRefs(); len(refs) > 1 {
		printWarnings(os.Stderr, path, []string{fmt.Sprintf(
			"Multiple base references specified (%s). Using %s (priority: baseCommit > baseBranch > pr).",
			strings.Join(refs, ", "), refs[0])})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 4*config.GetGitTimeout())
	defer cancel()

	resolver := gitstate.NewResolver(gitstate.NewRunner(), filepath.Dir(path))
	ref, err := resolver.ResolveBase(ctx, wt.Repository)
	if err != nil {
		return err
	}
	if ref.Source == gitstate.SourceNone {
		return fmt.Errorf("no base reference configured (add baseCommit, baseBranch, or pr)")
	}

	fmt.Printf("%s %s %s\n", gitstate.ShortCommit(ref.Commit), ref.Source, ref.Commit)
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)
	wt, warnings, err := loadWalkthrough(args[0])
	if err != nil {
		return err
	}
	printWarnings(os.Stderr, args[0], warnings)

	styled := isatty.IsTerminal(os.Stdout.Fd())
	if styled {
		ui.RefreshStyles()
	}
	fmt.Print(ui.FormatTree(wt, styled))
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)
	wt, warnings, err := loadWalkthrough(args[0])
	if err != nil {
		return err
	}
	printWarnings(os.Stderr, args[0], warnings)
	return ui.Run(wt)
}
