// Command client is a small CLI for exercising a Relic blob server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/relic-vcs/relic-server/pkg/client"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "Relic server base URL")
		username  = flag.String("user", "", "username for authentication")
		password  = flag.String("password", "", "password for authentication")
		token     = flag.String("token", "", "bearer token for authentication")
		repoOwner = flag.String("owner", "", "repository owner")
		repoName  = flag.String("repo", "", "repository name")
		maxLines  = flag.Int("max-lines", -1, "limit text output to N lines")
		maxBytes  = flag.Int("max-bytes", -1, "limit content output to N bytes")
		encoding  = flag.String("encoding", "", "source encoding for text output (IANA name)")
		verbose   = flag.Bool("v", false, "verbose request logging")
		timeout   = flag.Duration("timeout", 60*time.Second, "request timeout")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	opts := []client.ClientOption{client.WithTimeout(*timeout)}
	if *token != "" {
		opts = append(opts, client.WithTokenAuth(*token))
	} else if *username != "" {
		opts = append(opts, client.WithBasicAuth(*username, *password))
	}
	if *verbose {
		opts = append(opts, client.WithVerbose(true), client.WithLogger(log.Printf))
	}

	c := client.NewClient(*serverURL, opts...)
	ctx := context.Background()

	owner := *repoOwner
	if owner == "" {
		owner = *username
	}

	var err error
	switch args[0] {
	case "create-repo":
		err = requireArgs(args, 2, "create-repo <name>")
		if err == nil {
			var repo *client.Repository
			repo, err = c.CreateRepository(ctx, &client.RepoRequest{Name: args[1]})
			if err == nil {
				fmt.Printf("created repository %s/%s\n", repo.Owner, repo.Name)
			}
		}

	case "put":
		err = requireArgs(args, 2, "put <file>")
		if err == nil {
			var blob *client.Blob
			blob, err = c.CreateBlobFromFile(ctx, owner, *repoName, args[1])
			if err == nil {
				printBlob(blob)
			}
		}

	case "put-stdin":
		var blob *client.Blob
		blob, err = c.CreateBlobStream(ctx, owner, *repoName, "", os.Stdin)
		if err == nil {
			printBlob(blob)
		}

	case "cat":
		err = requireArgs(args, 2, "cat <oid>")
		if err == nil {
			var data []byte
			data, err = c.GetBlobContent(ctx, owner, *repoName, args[1], *maxBytes)
			if err == nil {
				os.Stdout.Write(data)
			}
		}

	case "text":
		err = requireArgs(args, 2, "text <oid>")
		if err == nil {
			var text *client.BlobText
			text, err = c.GetBlobText(ctx, owner, *repoName, args[1], *maxLines, *encoding)
			if err == nil {
				fmt.Print(text.Content)
			}
		}

	case "info":
		err = requireArgs(args, 2, "info <oid>")
		if err == nil {
			var blob *client.Blob
			blob, err = c.GetBlobInfo(ctx, owner, *repoName, args[1])
			if err == nil {
				printBlob(blob)
			}
		}

	case "ls":
		var blobs []client.Blob
		blobs, err = c.ListBlobs(ctx, owner, *repoName)
		if err == nil {
			for i := range blobs {
				printBlob(&blobs[i])
			}
		}

	case "reindex":
		var count int
		count, err = c.ReindexBlobs(ctx, owner, *repoName)
		if err == nil {
			fmt.Printf("indexed %d blobs\n", count)
		}

	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func printBlob(b *client.Blob) {
	kind := "text"
	if b.Binary {
		kind = "binary"
	}
	line := fmt.Sprintf("%s  %8d  %-6s  sloc=%d", b.OID, b.Size, kind, b.Sloc)
	if b.HintPath != "" {
		line += "  " + b.HintPath
	}
	fmt.Println(line)
}

func usage() {
	fmt.Fprintln(os.Stderr, strings.TrimSpace(`
usage: client [flags] <command> [args]

Commands:
  create-repo <name>   create a repository
  put <file>           upload a file as a blob
  put-stdin            upload stdin as a blob
  cat <oid>            print raw blob content
  text <oid>           print blob content as decoded text
  info <oid>           show blob metadata
  ls                   list indexed blobs
  reindex              rebuild the blob index

Flags:`))
	flag.PrintDefaults()
}
