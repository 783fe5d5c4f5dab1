package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/logger"
	"github.com/hpungsan/folio/internal/mcp"
	"github.com/hpungsan/folio/internal/ops"
)

// session holds what one CLI invocation shares between its hooks and command.
type session struct {
	base *config.Config
	cfg  *config.Config
	log  logger.Logger
	db   *sql.DB
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config) *cli.App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &session{base: cfg}

	app := &cli.App{
		Name:    "folio",
		Usage:   "Article corpus for static site builds",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Content root directory (default from config)"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug|info|warn|error"},
		},
		Before: s.before,
		After:  s.after,
		Commands: []*cli.Command{
			listCmd(s),
			getCmd(s),
			resolveCmd(s),
			checkCmd(s),
			latestCmd(s),
			tagsCmd(s),
			exportCmd(s),
			newCmd(s),
			serveMCPCmd(s),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// before applies global flags on top of the loaded config and builds the logger.
func (s *session) before(c *cli.Context) error {
	cfg := *s.base
	if content := c.String("content"); content != "" {
		cfg.ContentDir = content
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	s.cfg = &cfg

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create logger: %v", err), 1)
	}
	s.log = log
	return nil
}

// after releases the store and flushes the logger.
func (s *session) after(_ *cli.Context) error {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	if s.log != nil {
		_ = s.log.Sync()
	}
	return nil
}

// store opens an in-memory store and loads the content root into it.
func (s *session) store(c *cli.Context) (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	database, err := db.Open()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	start := time.Now()
	out, err := ops.Load(c.Context, database, ops.LoadInput{
		Root:       s.cfg.ContentDir,
		Extensions: s.cfg.Extensions,
		Logger:     s.log,
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	s.log.Debug("store ready",
		logger.String("run_id", out.RunID),
		logger.Int("articles", out.Articles),
		logger.Int("failures", out.Failures),
		logger.Duration("took", time.Since(start)),
	)

	s.db = database
	return database, nil
}

// listCmd creates the list command.
func listCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List published articles, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Only list articles with this tag"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Number of items to skip"},
		},
		Action: func(c *cli.Context) error {
			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.ListPublished(c.Context, database, ops.ListInput{
				Tag:      c.String("tag"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
				MaxLimit: s.cfg.ListMaxLimit,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get an article by slug (drafts included)",
		ArgsUsage: "<slug>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-body", Usage: "Exclude the Markdown body from output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("get takes exactly one slug"))
			}

			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.GetInput{Slug: c.Args().First()}
			if c.Bool("no-body") {
				includeBody := false
				input.IncludeBody = &includeBody
			}

			output, err := ops.Get(c.Context, database, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// resolveCmd creates the resolve command.
func resolveCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a reference from one article to another",
		ArgsUsage: "<from-slug> <target>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewInvalidRequest("resolve takes a source slug and a target"))
			}

			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.ResolveReference(c.Context, database, ops.ResolveInput{
				From:   c.Args().Get(0),
				Target: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// checkCmd creates the check command.
func checkCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Report malformed articles and unresolved references (exits 1 if any)",
		Action: func(c *cli.Context) error {
			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Check(c.Context, database)
			if err != nil {
				return outputError(err)
			}

			if err := outputJSON(output); err != nil {
				return err
			}
			if !output.OK {
				return cli.Exit(fmt.Sprintf("check failed: %d malformed, %d unresolved",
					len(output.Failures), len(output.Unresolved)), 1)
			}
			return nil
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Get the newest published article",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "body", Usage: "Include the Markdown body"},
		},
		Action: func(c *cli.Context) error {
			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Latest(c.Context, database, ops.LatestInput{IncludeBody: c.Bool("body")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// tagsCmd creates the tags command.
func tagsCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List tags of published articles with counts",
		Action: func(c *cli.Context) error {
			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Tags(c.Context, database)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the article manifest as JSONL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (.jsonl), default under export_dir"},
			&cli.BoolFlag{Name: "drafts", Usage: "Include draft articles"},
		},
		Action: func(c *cli.Context) error {
			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Export(c.Context, database, s.cfg, ops.ExportInput{
				Path:          c.String("path"),
				IncludeDrafts: c.Bool("drafts"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// newCmd creates the new command.
func newCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Scaffold a new draft article in the content root",
		ArgsUsage: "<slug>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Article title (required)"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "One-line summary (required)"},
			&cli.StringFlag{Name: "date", Usage: "Publication date YYYY-MM-DD (default today)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.BoolFlag{Name: "publish", Usage: "Create as published instead of draft"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("new takes exactly one slug"))
			}

			input := ops.ScaffoldInput{
				Root:        s.cfg.ContentDir,
				Slug:        c.Args().First(),
				Title:       c.String("title"),
				Description: c.String("description"),
				Tags:        parseTags(c.String("tags")),
				Draft:       !c.Bool("publish"),
			}
			if d := c.String("date"); d != "" {
				date, err := time.Parse("2006-01-02", d)
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("invalid date %q: want YYYY-MM-DD", d)))
				}
				input.Date = date
			}

			output, err := ops.Scaffold(input)
			if err != nil {
				return outputError(err)
			}
			s.log.Info("article created", logger.String("slug", output.Slug), logger.String("path", output.Path))

			return outputJSON(output)
		},
	}
}

// serveMCPCmd creates the serve-mcp command.
func serveMCPCmd(s *session) *cli.Command {
	return &cli.Command{
		Name:  "serve-mcp",
		Usage: "Serve the article tools over MCP stdio",
		Action: func(c *cli.Context) error {
			database, err := s.store(c)
			if err != nil {
				return outputError(err)
			}

			s.log.Info("mcp server starting", logger.String("content", s.cfg.ContentDir))
			if err := mcp.Run(database, s.cfg, s.log, Version); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if folioErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", folioErr.Code, folioErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
