package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"citypulse/internal/domain/entity"
	"citypulse/internal/handler/http/respond"
	"citypulse/internal/infra/reader"
)

var errNewsDisabled = errors.New("news feed disabled: set NEWSAPI_KEY")

func newCitiesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List selectable cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cities := s.app.Catalog.Cities()
			selected := s.app.Prefs.SelectedCity(ctx)
			return s.render(cmd.OutOrStdout(), map[string]any{"cities": cities, "selected": selected},
				func(w io.Writer) error {
					for _, c := range cities {
						mark := "  "
						if strings.EqualFold(c, selected) {
							mark = "* "
						}
						fmt.Fprintln(w, mark+c)
					}
					return nil
				})
		},
	}
}

func newCityCmd(s *session) *cobra.Command {
	city := &cobra.Command{
		Use:   "city",
		Short: "Show or change the selected city",
	}
	city.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the selected city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := s.app.Prefs.SelectedCity(cmd.Context())
			return s.render(cmd.OutOrStdout(), map[string]string{"city": c}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, c)
				return err
			})
		},
	}, &cobra.Command{
		Use:     "set <city>",
		Short:   "Select a city",
		Example: "  citypulse city set San Francisco",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := strings.TrimSpace(strings.Join(args, " "))
			if err := entity.ValidateCity(c); err != nil {
				return err
			}
			if !s.app.Catalog.HasCity(c) {
				s.logger.Warn("city is not in the catalog; alerts will only show nationwide notices",
					"city", c)
			}
			s.app.Prefs.SaveSelectedCity(cmd.Context(), c)
			return s.render(cmd.OutOrStdout(), map[string]string{"city": c}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Selected %s\n", c)
				return err
			})
		},
	})
	return city
}

func newNewsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "news [city]",
		Short: "Latest news for a city (default: the selected city)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.app.News == nil {
				return errNewsDisabled
			}
			ctx := cmd.Context()
			city := strings.TrimSpace(strings.Join(args, " "))
			if city == "" {
				city = s.app.Prefs.SelectedCity(ctx)
			}
			articles, err := s.app.News.FetchCityNews(ctx, city)
			if err != nil {
				return errors.New(respond.SanitizeError(err))
			}
			if articles == nil {
				articles = []entity.Article{}
			}
			return s.render(cmd.OutOrStdout(), map[string]any{"city": city, "articles": articles},
				func(w io.Writer) error {
					fmt.Fprintf(w, "News for %s\n\n", city)
					return writeArticles(w, articles)
				})
		},
	}
}

func newBookmarksCmd(s *session) *cobra.Command {
	bm := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bm"},
		Short:   "Manage saved articles",
	}

	bm.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bookmarks in the order they were saved",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap := s.app.Bookmarks.Listing(cmd.Context())
			body := map[string]any{"bookmarks": snap.Articles, "state": snap.Outcome.String()}
			return s.render(cmd.OutOrStdout(), body, func(w io.Writer) error {
				return writeArticles(w, snap.Articles)
			})
		},
	})

	var a entity.Article
	add := &cobra.Command{
		Use:   "add <url>",
		Short: "Save an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			article := a
			article.URL = args[0]
			if article.Date == "" {
				article.Date = time.Now().UTC().Format(time.RFC3339)
			}
			if err := article.Validate(); err != nil {
				return err
			}
			added := s.app.Bookmarks.Add(cmd.Context(), article)
			return s.render(cmd.OutOrStdout(), map[string]bool{"added": added}, func(w io.Writer) error {
				if added {
					_, err := fmt.Fprintf(w, "Bookmarked %s\n", article.URL)
					return err
				}
				_, err := fmt.Fprintf(w, "Not added (already saved or store unavailable): %s\n", article.URL)
				return err
			})
		},
	}
	add.Flags().StringVar(&a.Title, "title", "", "article title (required)")
	add.Flags().StringVar(&a.Date, "date", "", "publication date (default: now)")
	add.Flags().StringVar(&a.Source, "source", "", "publisher name")
	add.Flags().StringVar(&a.Description, "description", "", "short summary")
	add.Flags().StringVar(&a.Image, "image", "", "image URL")
	bm.AddCommand(add)

	bm.AddCommand(&cobra.Command{
		Use:     "remove <url>",
		Aliases: []string{"rm"},
		Short:   "Delete a bookmark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !s.app.Bookmarks.Remove(cmd.Context(), args[0]) {
				return fmt.Errorf("could not update bookmarks")
			}
			return s.render(cmd.OutOrStdout(), map[string]bool{"removed": true}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Removed %s\n", args[0])
				return err
			})
		},
	})

	bm.AddCommand(&cobra.Command{
		Use:   "check <url>",
		Short: "Report whether a URL is bookmarked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := s.app.Bookmarks.Contains(cmd.Context(), args[0])
			body := map[string]any{"url": args[0], "bookmarked": ok}
			return s.render(cmd.OutOrStdout(), body, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, ok)
				return err
			})
		},
	})
	return bm
}

func newAlertsCmd(s *session) *cobra.Command {
	var city string
	var all bool
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Emergency alerts for a city (default: the selected city)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case all:
				city = ""
			case city == "":
				city = s.app.Prefs.SelectedCity(cmd.Context())
			}
			alerts := s.app.Catalog.List(city)
			body := map[string]any{"alerts": alerts}
			if city != "" {
				body["city"] = city
			}
			return s.render(cmd.OutOrStdout(), body, func(w io.Writer) error {
				return writeAlerts(w, alerts)
			})
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "city to filter by")
	cmd.Flags().BoolVar(&all, "all", false, "list every alert in the catalog")
	return cmd
}

func newReadCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "read <url>",
		Short: "Print the readable text of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := s.app.Reader.Read(cmd.Context(), args[0])
			if err != nil {
				return readError(err)
			}
			return s.render(cmd.OutOrStdout(), content, func(w io.Writer) error {
				fmt.Fprintln(w, content.Title)
				if content.Byline != "" {
					fmt.Fprintln(w, content.Byline)
				}
				fmt.Fprintln(w)
				_, err := fmt.Fprintln(w, content.Text)
				return err
			})
		},
	}
}

func readError(err error) error {
	switch {
	case errors.Is(err, reader.ErrInvalidURL):
		return fmt.Errorf("invalid article URL")
	case errors.Is(err, reader.ErrPrivateIP):
		return fmt.Errorf("article URL not allowed")
	}
	return errors.New(respond.SanitizeError(err))
}

func newVersionCmd(s *session, version string) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipApp": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.render(cmd.OutOrStdout(), map[string]string{"version": version}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, version)
				return err
			})
		},
	}
}
