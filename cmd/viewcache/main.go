// Command viewcache warms and inspects the local project artifact cache.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"

	"github.com/polyscene/viewcache"
	"github.com/polyscene/viewcache/fingerprint"
	s3provider "github.com/polyscene/viewcache/remote/s3"
)

func main() {
	app := cli.NewApp()
	app.Name = "viewcache"
	app.Usage = "disk-backed cache of project metadata, thumbnails, and 3D-view bundles"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to config file",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log level (trace, debug, info, warn, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "ensure",
			Usage:     "download and unpack a project's artifacts if not fully cached",
			ArgsUsage: "<project-id>",
			Action:    runEnsure,
		},
		{
			Name:      "status",
			Usage:     "report whether a project is fully cached",
			ArgsUsage: "<project-id>",
			Action:    runStatus,
		},
		{
			Name:      "hash",
			Usage:     "print the content fingerprint of a file",
			ArgsUsage: "<path>",
			Action:    runHash,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "viewcache:", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.GlobalString("log-level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger(), nil
}

func newStore(c *cli.Context, cfg *config) (*viewcache.Store, error) {
	id := c.Args().First()
	if id == "" {
		return nil, fmt.Errorf("project id argument is required")
	}
	project, err := viewcache.NewProject(id)
	if err != nil {
		return nil, err
	}
	return viewcache.NewStore(cfg.Root, project,
		viewcache.WithThumbnailExt(cfg.ThumbnailExt),
	)
}

func runEnsure(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}
	store, err := newStore(c, cfg)
	if err != nil {
		return err
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("config: bucket is required")
	}

	awsCfg := aws.NewConfig().
		WithRegion(cfg.Region).
		WithS3ForcePathStyle(cfg.ForcePathStyle)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	provider, err := s3provider.New(sess, cfg.Bucket,
		s3provider.WithExpiry(cfg.SignedURLTTL),
	)
	if err != nil {
		return err
	}
	fetcher, err := viewcache.NewFetcher(provider, viewcache.WithLogger(log))
	if err != nil {
		return err
	}

	if err := fetcher.Ensure(context.Background(), store); err != nil {
		return err
	}
	dir, err := store.CachedBundleDir()
	if err != nil {
		return err
	}
	fmt.Println(dir)
	return nil
}

func runStatus(c *cli.Context) error {
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}
	store, err := newStore(c, cfg)
	if err != nil {
		return err
	}

	if !store.IsCached() {
		fmt.Printf("%s: not cached\n", store.Project().ID())
		return nil
	}
	meta, err := store.Metadata()
	if err != nil {
		return err
	}
	versions, err := store.BundleVersions()
	if err != nil {
		return err
	}
	fmt.Printf("%s: cached at hash %s (%d version(s) on disk)\n",
		store.Project().ID(), meta.Hash, len(versions))
	return nil
}

func runHash(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("path argument is required")
	}
	fp, err := fingerprint.File(path)
	if err != nil {
		return err
	}
	fmt.Println(fp)
	return nil
}
