// Command apidemo exercises the REST client against a JSON API: a single
// lookup, a filtered list, a write/update/delete round trip, a lazy
// pagination walk, and a chunked download.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/danelimjoco/2025-external-rest-practice/pkg/client"
	"github.com/danelimjoco/2025-external-rest-practice/pkg/config"
	"github.com/danelimjoco/2025-external-rest-practice/pkg/logging"
	"github.com/danelimjoco/2025-external-rest-practice/pkg/pagination"
	"github.com/danelimjoco/2025-external-rest-practice/pkg/stream"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseURL := flag.String("base-url", settings.BaseURL, "API base URL")
	rate := flag.Float64("rate", settings.RequestsPerSecond, "maximum requests per second")
	logLevel := flag.String("log-level", settings.LogLevel, "log level (debug, info, warn, error)")
	pretty := flag.Bool("pretty", false, "human-readable log output")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus metrics on (e.g. :9090)")
	timeout := flag.Duration("timeout", 60*time.Second, "overall demo timeout")
	flag.Parse()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(*logLevel),
		Pretty: *pretty,
		Output: os.Stderr,
	})

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, logger)
	}

	cfg := client.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.RequestsPerSecond = *rate
	cfg.Token = settings.Token

	c, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := runDemo(ctx, c, logger); err != nil {
		logger.Fatal().Err(err).Msg("Demo failed")
	}
	logger.Info().Msg("Demo complete")
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}

func runDemo(ctx context.Context, c *client.Client, logger zerolog.Logger) error {
	if err := showTodo(ctx, c, logger); err != nil {
		return err
	}
	if err := showCompletedTodos(ctx, c, logger); err != nil {
		return err
	}
	if err := postLifecycle(ctx, c, logger); err != nil {
		return err
	}
	if err := walkPages(ctx, c, logger); err != nil {
		return err
	}
	return downloadChunked(ctx, c, logger)
}

func showTodo(ctx context.Context, c *client.Client, logger zerolog.Logger) error {
	todo, err := c.GetTodo(ctx, 1)
	if err != nil {
		return fmt.Errorf("fetch todo: %w", err)
	}
	logger.Info().Int("id", todo.ID).Str("title", todo.Title).Bool("completed", todo.Completed).Msg("Fetched todo")
	return nil
}

func showCompletedTodos(ctx context.Context, c *client.Client, logger zerolog.Logger) error {
	todos, err := c.ListTodos(ctx, url.Values{"completed": {"true"}, "userId": {"1"}})
	if err != nil {
		return fmt.Errorf("list todos: %w", err)
	}
	logger.Info().Int("count", len(todos)).Msg("Listed completed todos for user 1")
	return nil
}

func postLifecycle(ctx context.Context, c *client.Client, logger zerolog.Logger) error {
	created, err := c.CreatePost(ctx, client.Post{UserID: 1, Title: "hello", Body: "first post"})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	logger.Info().Int("id", created.ID).Msg("Created post")

	created.Title = "hello, updated"
	updated, err := c.UpdatePost(ctx, *created)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	logger.Info().Int("id", updated.ID).Str("title", updated.Title).Msg("Updated post")

	if err := c.DeletePost(ctx, updated.ID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	logger.Info().Int("id", updated.ID).Msg("Deleted post")
	return nil
}

// walkPages demonstrates lazy pagination. The cursor only fetches pages as
// items are consumed, so stopping early leaves later pages unrequested.
func walkPages(ctx context.Context, c *client.Client, logger zerolog.Logger) error {
	const maxItems = 10

	cursor := pagination.New(c, "/posts", url.Values{"userId": {"1"}})
	items := 0
	for items < maxItems {
		item, ok, err := cursor.Next(ctx)
		if err != nil {
			return fmt.Errorf("walk pages: %w", err)
		}
		if !ok {
			break
		}
		_ = item
		items++
	}
	logger.Info().Int("items", items).Msg("Walked paged endpoint")
	return nil
}

func downloadChunked(ctx context.Context, c *client.Client, logger zerolog.Logger) error {
	s, err := stream.Open(ctx, c.HTTPClient(), c.BaseURL()+"/photos")
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer s.Close()

	var chunks, total int
	for {
		chunk, ok, err := s.Next()
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if !ok {
			break
		}
		chunks++
		total += len(chunk)
	}
	logger.Info().Int("chunks", chunks).Int("bytes", total).Msg("Downloaded in chunks")
	return nil
}
