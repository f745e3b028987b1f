package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/bucketkit/bucketkit/internal/objectstore"
	"github.com/bucketkit/bucketkit/pkg/logger"
)

func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "Object storage endpoint host",
			Value:   "localhost",
			EnvVars: []string{"MINIO_ENDPOINT"},
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "Object storage port",
			Value:   objectstore.DefaultPort,
			EnvVars: []string{"MINIO_PORT"},
		},
		&cli.BoolFlag{
			Name:    "ssl",
			Usage:   "Use TLS for the storage connection",
			EnvVars: []string{"MINIO_USE_SSL"},
		},
		&cli.StringFlag{
			Name:     "access-key",
			Usage:    "Access key",
			Required: true,
			EnvVars:  []string{"MINIO_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:     "secret-key",
			Usage:    "Secret key",
			Required: true,
			EnvVars:  []string{"MINIO_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Storage region",
			Value:   objectstore.DefaultRegion,
			EnvVars: []string{"MINIO_REGION"},
		},
	}
}

func connectStore(c *cli.Context) (*objectstore.Service, error) {
	store := objectstore.New()
	cfg := objectstore.Config{
		Endpoint:  c.String("endpoint"),
		Port:      c.Int("port"),
		UseSSL:    c.Bool("ssl"),
		AccessKey: c.String("access-key"),
		SecretKey: c.String("secret-key"),
		Region:    c.String("region"),
	}
	if err := store.Connect(c.Context, cfg); err != nil {
		return nil, err
	}
	return store, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// readItems parses "source destination" pairs, one per line, for batch
// transfers. Blank lines and lines starting with # are skipped.
func readItems(path string) ([]objectstore.TransferItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item list %s: %w", path, err)
	}

	var items []objectstore.TransferItem
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected \"source destination\", got %q", path, i+1, line)
		}
		items = append(items, objectstore.TransferItem{Source: fields[0], Destination: fields[1]})
	}
	return items, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().Err(err).Msg("could not load .env file")
	}

	app := &cli.App{
		Name:  "bucketkit",
		Usage: "Object storage operations from the command line",
		Flags: connectionFlags(),
		Commands: []*cli.Command{
			{
				Name:  "ls",
				Usage: "List buckets, or objects when a bucket is given",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Object name prefix"},
					&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "Recurse into directory prefixes"},
				},
				ArgsUsage: "[bucket]",
				Action: func(c *cli.Context) error {
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					if c.NArg() == 0 {
						buckets, err := store.ListBuckets(c.Context)
						if err != nil {
							return err
						}
						return printJSON(buckets)
					}
					objects, err := store.ListObjects(c.Context, c.Args().First(), c.String("prefix"), c.Bool("recursive"))
					if err != nil {
						return err
					}
					return printJSON(objects)
				},
			},
			{
				Name:      "mb",
				Usage:     "Create a bucket",
				ArgsUsage: "<bucket>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bucket-region", Usage: "Region for the new bucket"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: mb <bucket>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					return store.CreateBucket(c.Context, c.Args().First(), c.String("bucket-region"))
				},
			},
			{
				Name:      "rb",
				Usage:     "Remove an empty bucket",
				ArgsUsage: "<bucket>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: rb <bucket>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					return store.DeleteBucket(c.Context, c.Args().First())
				},
			},
			{
				Name:      "exists",
				Usage:     "Check whether a bucket exists",
				ArgsUsage: "<bucket>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: exists <bucket>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					exists, err := store.BucketExists(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(exists)
					return nil
				},
			},
			{
				Name:      "cat",
				Usage:     "Stream an object's content to stdout",
				ArgsUsage: "<bucket> <object>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: cat <bucket> <object>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					rc, err := store.GetObjectStream(c.Context, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					defer rc.Close()
					_, err = io.Copy(os.Stdout, rc)
					return err
				},
			},
			{
				Name:      "up",
				Usage:     "Upload a local file or remote URL as an object",
				ArgsUsage: "<bucket> <object> <source>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.Exit("usage: up <bucket> <object> <source>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					args := c.Args()
					return store.UploadFile(c.Context, args.Get(0), args.Get(1), args.Get(2), nil)
				},
			},
			{
				Name:      "down",
				Usage:     "Download an object to a local path",
				ArgsUsage: "<bucket> <object> <destination>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 3 {
						return cli.Exit("usage: down <bucket> <object> <destination>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					args := c.Args()
					return store.DownloadFile(c.Context, args.Get(0), args.Get(1), args.Get(2))
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove one or more objects",
				ArgsUsage: "<bucket> <object> [object...]",
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return cli.Exit("usage: rm <bucket> <object> [object...]", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					bucket := c.Args().First()
					names := c.Args().Slice()[1:]
					if len(names) == 1 {
						return store.DeleteObject(c.Context, bucket, names[0])
					}
					result, err := store.DeleteObjects(c.Context, bucket, names)
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:      "cp",
				Usage:     "Copy an object server-side",
				ArgsUsage: "<src-bucket> <src-object> <dest-bucket> <dest-object>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 4 {
						return cli.Exit("usage: cp <src-bucket> <src-object> <dest-bucket> <dest-object>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					args := c.Args()
					return store.CopyObject(c.Context, args.Get(0), args.Get(1), args.Get(2), args.Get(3))
				},
			},
			{
				Name:      "stat",
				Usage:     "Show an object's metadata",
				ArgsUsage: "<bucket> <object>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: stat <bucket> <object>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					info, err := store.GetObjectInfo(c.Context, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					return printJSON(info)
				},
			},
			{
				Name:      "presign",
				Usage:     "Generate a presigned URL for an object",
				ArgsUsage: "<bucket> <object>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "method", Usage: "GET, PUT or DELETE", Value: "GET"},
					&cli.IntFlag{Name: "expiry", Usage: "Expiry in seconds", Value: 3600},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: presign <bucket> <object>", 1)
					}
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					u, err := store.PresignedURL(c.Context, c.Args().Get(0), c.Args().Get(1),
						c.String("method"), time.Duration(c.Int("expiry"))*time.Second, url.Values{})
					if err != nil {
						return err
					}
					fmt.Println(u)
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "Show aggregate storage statistics (full listing of every bucket)",
				Action: func(c *cli.Context) error {
					store, err := connectStore(c)
					if err != nil {
						return err
					}
					stats, err := store.GetStorageStats(c.Context)
					if err != nil {
						return err
					}
					return printJSON(stats)
				},
			},
			{
				Name:  "policy",
				Usage: "Manage bucket policies",
				Subcommands: []*cli.Command{
					{
						Name:      "get",
						ArgsUsage: "<bucket>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 1 {
								return cli.Exit("usage: policy get <bucket>", 1)
							}
							store, err := connectStore(c)
							if err != nil {
								return err
							}
							policy, err := store.GetBucketPolicy(c.Context, c.Args().First())
							if err != nil {
								return err
							}
							fmt.Println(policy)
							return nil
						},
					},
					{
						Name:      "set",
						ArgsUsage: "<bucket> <policy-file>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 2 {
								return cli.Exit("usage: policy set <bucket> <policy-file>", 1)
							}
							policy, err := os.ReadFile(c.Args().Get(1))
							if err != nil {
								return fmt.Errorf("failed to read policy file: %w", err)
							}
							store, err := connectStore(c)
							if err != nil {
								return err
							}
							return store.SetBucketPolicy(c.Context, c.Args().First(), string(policy))
						},
					},
					{
						Name:      "rm",
						ArgsUsage: "<bucket>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 1 {
								return cli.Exit("usage: policy rm <bucket>", 1)
							}
							store, err := connectStore(c)
							if err != nil {
								return err
							}
							return store.DeleteBucketPolicy(c.Context, c.Args().First())
						},
					},
				},
			},
			{
				Name:  "batch",
				Usage: "Batch transfers driven by a \"source destination\" list file",
				Subcommands: []*cli.Command{
					{
						Name:      "upload",
						ArgsUsage: "<bucket> <list-file>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 2 {
								return cli.Exit("usage: batch upload <bucket> <list-file>", 1)
							}
							items, err := readItems(c.Args().Get(1))
							if err != nil {
								return err
							}
							store, err := connectStore(c)
							if err != nil {
								return err
							}
							result, err := store.UploadFiles(c.Context, c.Args().First(), items)
							if err != nil {
								return err
							}
							return printJSON(result)
						},
					},
					{
						Name:      "download",
						ArgsUsage: "<bucket> <list-file>",
						Action: func(c *cli.Context) error {
							if c.NArg() != 2 {
								return cli.Exit("usage: batch download <bucket> <list-file>", 1)
							}
							items, err := readItems(c.Args().Get(1))
							if err != nil {
								return err
							}
							store, err := connectStore(c)
							if err != nil {
								return err
							}
							result, err := store.DownloadFiles(c.Context, c.Args().First(), items)
							if err != nil {
								return err
							}
							return printJSON(result)
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}
