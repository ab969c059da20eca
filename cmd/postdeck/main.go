package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/postdeck/internal/config"
	"github.com/jeanpaul/postdeck/internal/export"
	"github.com/jeanpaul/postdeck/internal/health"
	"github.com/jeanpaul/postdeck/internal/kv"
	"github.com/jeanpaul/postdeck/internal/logging"
	"github.com/jeanpaul/postdeck/internal/post"
	"github.com/jeanpaul/postdeck/internal/query"
	"github.com/jeanpaul/postdeck/internal/theme"
	"github.com/jeanpaul/postdeck/internal/tui"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

// ui holds the styles for command output. It follows the saved theme once
// the app is open.
var ui = tui.NewStyles(theme.Light)

type app struct {
	cfg   *config.Config
	slot  kv.Store
	store *post.Store
	pref  *theme.Preference
	log   *logrus.Entry
	out   io.Writer
}

// exitCode ends a command with a status but no error line.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes one invocation and returns the process status. Every
// deferred close runs before main exits.
func run(argv []string, stdout io.Writer) int {
	if err := execute(argv, stdout); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			return int(code)
		}
		fmt.Fprintln(os.Stderr, ui.Error.Render("error: "+err.Error()))
		return 1
	}
	return 0
}

func execute(argv []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("postdeck", flag.ContinueOnError)
	versionFlag := flags.Bool("version", false, "Print version")
	helpFlag := flags.Bool("help", false, "Show help")
	flags.BoolVar(helpFlag, "h", false, "Show help")
	backendFlag := flags.String("backend", "", "Storage backend (file, redis, memory)")
	dataFlag := flags.String("data", "", "Data directory for the file backend")
	strictFlag := flags.Bool("strict", false, "Fail commands when changes cannot be saved")

	flags.Usage = showHelp
	if err := parseFlags(flags, argv); err != nil {
		return err
	}

	if *helpFlag {
		showHelp()
		return nil
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "postdeck %s\n", version)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if *backendFlag != "" {
		cfg.Storage.Backend = *backendFlag
	}
	if *dataFlag != "" {
		cfg.Storage.Dir = *dataFlag
	}
	if *strictFlag {
		cfg.StrictPersistence = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	args := flags.Args()
	interactive := len(args) == 0
	if interactive && cfg.Log.File == "" {
		// Keep log lines off the TUI screen.
		cfg.Log.File = filepath.Join(filepath.Dir(config.Path()), "postdeck.log")
	}
	_, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) > 0 {
		switch args[0] {
		case "help":
			showHelp()
			return nil
		case "doctor":
			return cmdDoctor(ctx, cfg)
		}
	}

	a, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.slot.Close()
	a.out = stdout

	if interactive {
		return launchTUI(ctx, a)
	}

	rest := args[1:]
	switch args[0] {
	case "list", "ls":
		return cmdList(a, rest)
	case "show":
		return cmdShow(a, rest)
	case "add":
		return cmdAdd(ctx, a, rest)
	case "edit":
		return cmdEdit(ctx, a, rest)
	case "delete", "rm":
		return cmdDelete(ctx, a, rest)
	case "categories":
		cmdCategories(a)
	case "stats":
		cmdStats(a)
	case "export":
		return cmdExport(a, rest)
	case "import":
		return cmdImport(ctx, a, rest)
	case "theme":
		return cmdTheme(ctx, a, rest)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		showHelp()
		return exitCode(2)
	}
	return nil
}

// parseFlags maps flag package failures to exit codes. The flag set has
// already printed its own message.
func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flag.ErrHelp):
		return exitCode(0)
	default:
		return exitCode(2)
	}
}

// open connects the slot, loads posts and theme, and seeds the demo posts on
// first run.
func open(ctx context.Context, cfg *config.Config) (*app, error) {
	slot, err := kv.Open(cfg.KVOptions())
	if err != nil {
		return nil, err
	}

	log := logging.For("postdeck")
	store := post.NewStore(slot, post.WithStrictPersistence(cfg.StrictPersistence))
	store.Load(ctx)

	if cfg.SeedSamples && store.Len() == 0 {
		// Only a slot that was never written counts as a first run; an
		// emptied list stays empty.
		if _, err := slot.Get(ctx, post.DefaultKey); errors.Is(err, kv.ErrNotFound) {
			n, err := post.Seed(ctx, store)
			if err != nil {
				log.WithError(err).Warn("seeding sample posts")
			} else {
				log.WithField("count", n).Info("seeded sample posts")
			}
		}
	}

	fallback, err := theme.Parse(cfg.Theme)
	if err != nil {
		fallback = theme.Light
	}
	pref := theme.NewPreference(slot, fallback)
	ui = tui.NewStyles(pref.Load(ctx))

	return &app{cfg: cfg, slot: slot, store: store, pref: pref, log: log, out: os.Stdout}, nil
}

func launchTUI(ctx context.Context, a *app) error {
	m := tui.NewModel(ctx, a.store, a.pref)

	var opts []tea.ProgramOption
	if isTerminal() {
		opts = append(opts, tea.WithAltScreen())
	}
	opts = append(opts, tea.WithContext(ctx))

	p := tea.NewProgram(m, opts...)
	_, runErr := p.Run()
	if err := a.store.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error.Render("warning: posts could not be saved: "+err.Error()))
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}

func cmdList(a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	q := fs.String("q", "", "Search titles and tags")
	c := fs.String("c", "", "Only this category (exact match)")
	long := fs.Bool("l", false, "Show full posts")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	posts := query.Filter(a.store.List(), *q, *c)
	if len(posts) == 0 {
		fmt.Fprintln(a.out, ui.Empty.Render("No posts found."))
		return nil
	}
	for _, p := range posts {
		if *long {
			fmt.Fprintln(a.out, tui.RenderCard(p, ui, 80))
			continue
		}
		fmt.Fprintf(a.out, "%s  %s  %s  %s\n",
			ui.Meta.Render(shortID(p.ID)),
			ui.Meta.Render(p.CreatedAt.Local().Format("2006-01-02")),
			ui.Category.Render(fmt.Sprintf("%-12s", p.Category)),
			ui.Title.Render(p.Title),
		)
	}
	return nil
}

func cmdShow(a *app, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: postdeck show <id>")
	}
	p, err := mustFind(a, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tui.RenderCard(p, ui, 80))
	fmt.Fprintln(a.out, ui.Meta.Render("id: "+p.ID))
	return nil
}

// inputFlags registers the post fields on fs.
func inputFlags(fs *flag.FlagSet) *post.Input {
	in := &post.Input{}
	fs.StringVar(&in.Title, "title", "", "Post title")
	fs.StringVar(&in.Author, "author", "", "Author name")
	fs.StringVar(&in.Category, "category", "", "Category")
	fs.StringVar(&in.Tags, "tags", "", "Comma separated tags")
	fs.StringVar(&in.Content, "content", "", "Post body, or - to read stdin")
	return in
}

func readContent(in *post.Input) error {
	if in.Content != "-" {
		return nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading content from stdin: %w", err)
	}
	in.Content = string(data)
	return nil
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	in := inputFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := readContent(in); err != nil {
		return err
	}

	p, err := a.store.Create(ctx, *in)
	if err := reportWrite(err); err != nil {
		return err
	}
	fmt.Fprintln(a.out, ui.Success.Render("✓ Created "+p.ID))
	return nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return errors.New("usage: postdeck edit <id> [-title ...] [-author ...] [-category ...] [-tags ...] [-content ...]")
	}
	before, err := mustFind(a, args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	set := inputFlags(fs)
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	if err := readContent(set); err != nil {
		return err
	}

	// Unset flags keep the current value.
	in := post.InputFrom(before)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			in.Title = set.Title
		case "author":
			in.Author = set.Author
		case "category":
			in.Category = set.Category
		case "tags":
			in.Tags = set.Tags
		case "content":
			in.Content = set.Content
		}
	})

	after, err := a.store.Update(ctx, before.ID, in)
	if err := reportWrite(err); err != nil {
		return err
	}

	if d := post.Diff(before, after); d != "" {
		fmt.Fprint(a.out, d)
	} else {
		fmt.Fprintln(a.out, ui.Help.Render("No field changes."))
	}
	fmt.Fprintln(a.out, ui.Success.Render("✓ Updated "+after.ID))
	return nil
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: postdeck delete <id>")
	}
	id := args[0]
	p, found := findPost(a, id)
	if found {
		id = p.ID
	}
	// Delete is idempotent and still rewrites the slot for a missing id.
	if err := reportWrite(a.store.Delete(ctx, id)); err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(a.out, ui.Help.Render("No post "+id+"; nothing to delete."))
		return nil
	}
	fmt.Fprintln(a.out, ui.Success.Render("✓ Deleted "+id))
	return nil
}

func cmdCategories(a *app) {
	for _, c := range query.DistinctCategories(a.store.List()) {
		fmt.Fprintln(a.out, c)
	}
}

func cmdStats(a *app) {
	s := query.Summarize(a.store.List())
	fmt.Fprintf(a.out, "%s %d\n", ui.Label.Render("Total posts:"), s.TotalCount)
	fmt.Fprintf(a.out, "%s %d\n", ui.Label.Render("Categories: "), s.CategoryCount)
}

func cmdExport(a *app, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: postdeck export <file.json|file.yaml|file.xlsx>")
	}
	posts := a.store.List()
	if err := export.WriteFile(args[0], posts); err != nil {
		return err
	}
	fmt.Fprintln(a.out, ui.Success.Render(fmt.Sprintf("✓ Exported %d posts to %s", len(posts), args[0])))
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: postdeck import <file or glob, e.g. 'exports/**/*.json'>")
	}
	res, err := export.Import(ctx, a.store, args[0])
	for _, s := range res.Skipped {
		fmt.Fprintln(a.out, ui.Error.Render(fmt.Sprintf("  skipped %s #%d: %s", s.File, s.Index+1, s.Err)))
	}
	if err != nil && !errors.Is(err, post.ErrPersistence) {
		return err
	}
	fmt.Fprintln(a.out, ui.Success.Render(fmt.Sprintf("✓ Imported %d posts from %d file(s)", len(res.Created), len(res.Files))))
	return reportWrite(err)
}

func cmdTheme(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, a.pref.Current())
		return nil
	}
	var err error
	next := a.pref.Current()
	if args[0] == "toggle" {
		next, err = a.pref.Toggle(ctx)
	} else {
		next, err = theme.Parse(args[0])
		if err != nil {
			return errors.New("usage: postdeck theme [light|dark|toggle]")
		}
		err = a.pref.Set(ctx, next)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, next)
	return nil
}

func cmdDoctor(ctx context.Context, cfg *config.Config) error {
	fmt.Println(ui.Banner.Render(tui.Banner))
	fmt.Println(ui.Label.Render("  Storage Health Check"))
	fmt.Println()

	slot, err := kv.Open(cfg.KVOptions())
	if err != nil {
		return err
	}
	defer slot.Close()

	fmt.Printf("  %s %s ... ", ui.Meta.Render("●"), ui.Title.Render(cfg.Storage.Backend))
	status := health.Check(ctx, slot)
	if !status.Reachable {
		fmt.Println(ui.Error.Render("✗ " + status.Error))
	} else {
		fmt.Printf("%s %s %s\n",
			ui.Success.Render("✓ OK"),
			ui.Help.Render(status.Location),
			ui.Help.Render(status.Latency.Round(time.Millisecond).String()),
		)
		for _, k := range status.Keys {
			fmt.Printf("  %s %s ... ", ui.Meta.Render("●"), ui.Title.Render(k.Key))
			switch {
			case k.Problem != "":
				fmt.Println(ui.Error.Render("✗ " + k.Problem))
			case !k.Present:
				fmt.Println(ui.Help.Render("- not written yet"))
			case k.Key == post.DefaultKey:
				fmt.Println(ui.Success.Render(fmt.Sprintf("✓ %d posts", k.Records)) + ui.Help.Render(fmt.Sprintf(" (%d bytes)", k.Bytes)))
			default:
				fmt.Println(ui.Success.Render("✓ OK"))
			}
		}
	}

	fmt.Printf("  %s %s ... ", ui.Meta.Render("●"), ui.Title.Render("config"))
	if _, err := os.Stat(config.Path()); err == nil {
		fmt.Println(ui.Success.Render("✓ " + config.Path()))
	} else {
		fmt.Println(ui.Help.Render("- Using defaults (create " + config.Path() + " to customize)"))
	}

	fmt.Println()
	if status.Healthy() {
		fmt.Println(ui.Success.Render("  Storage healthy!"))
		return nil
	}
	fmt.Println(ui.Error.Render("  Storage has problems."))
	if cfg.Storage.Backend == "redis" {
		fmt.Println(ui.Help.Render("  Check that Redis is running at " + cfg.Storage.Redis.Addr))
	}
	return exitCode(1)
}

// findPost matches a full id or a unique id prefix.
func findPost(a *app, id string) (post.Post, bool) {
	if p, ok := a.store.Get(id); ok {
		return p, true
	}
	var match []post.Post
	for _, p := range a.store.List() {
		if strings.HasPrefix(p.ID, id) {
			match = append(match, p)
		}
	}
	if len(match) == 1 {
		return match[0], true
	}
	return post.Post{}, false
}

func mustFind(a *app, id string) (post.Post, error) {
	p, ok := findPost(a, id)
	if !ok {
		return post.Post{}, fmt.Errorf("no post with id %q (ids may be shortened to a unique prefix)", id)
	}
	return p, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// reportWrite prints validation errors per field and turns a store error
// into the command's error.
func reportWrite(err error) error {
	if err == nil {
		return nil
	}
	var verr *post.ValidationError
	if errors.As(err, &verr) {
		names := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(os.Stderr, ui.Error.Render("  "+name+": "+verr.Fields[name]))
		}
		return fmt.Errorf("post not saved: %w", err)
	}
	if errors.Is(err, post.ErrPersistence) {
		return fmt.Errorf("change applied but not saved: %w", err)
	}
	return err
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func showHelp() {
	help := `
` + ui.Banner.Render(tui.Banner) + `
  a blog manager for your terminal

` + ui.Label.Render("USAGE:") + `
  postdeck [flags]                Browse posts interactively
  postdeck <command> [args]       Run a command

` + ui.Label.Render("COMMANDS:") + `
  list [-q text] [-c category] [-l]   List posts, newest first
  show <id>                           Show one post
  add -title T -author A -category C [-tags x,y] -content B|-
                                      Create a post
  edit <id> [-title ...] [...]        Change fields of a post and print the diff
  delete <id>                         Delete a post
  categories                          List categories
  stats                               Count posts and categories
  export <file>                       Write all posts to .json, .yaml or .xlsx
  import <file|glob>                  Add posts from exported files
  theme [light|dark|toggle]           Show or change the theme
  doctor                              Check the storage backend
  help                                Show this help

` + ui.Label.Render("FLAGS:") + `
  --backend <file|redis|memory>   Storage backend
  --data <dir>                    Data directory for the file backend
  --strict                        Fail when a change cannot be saved
  --version                       Show version
  --help, -h                      Show this help

` + ui.Label.Render("KEYS (interactive):") + `
  ↑/↓ j/k     Select post          a   New post
  e / enter   Edit post            d   Delete post
  s or /      Search               tab Next category
  c           Clear filters        t   Toggle theme
  :           Command menu         q   Quit

` + ui.Label.Render("CONFIG:") + `
  ` + config.Path() + `
  Environment: POSTDECK_STORAGE_BACKEND, POSTDECK_STORAGE_REDIS_ADDR, ...
`
	fmt.Println(help)
}
