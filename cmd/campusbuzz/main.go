// Command campusbuzz is a terminal client for the campus-community API. It
// walks the same flow the mobile screens do: restore the session on launch,
// sign in when needed, then browse and interact with the feed.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"campusbuzz/internal/api"
	"campusbuzz/internal/config"
	"campusbuzz/internal/content"
	"campusbuzz/internal/observability"
	"campusbuzz/internal/session"
	"campusbuzz/internal/tokenstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	tokens, err := tokenstore.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to open token store: %v", err)
	}

	logger := observability.GlobalLogger
	client := api.NewClient(cfg.APIBaseURL, tokens, nil, logger)
	sessions := session.NewManager(client, tokens, logger)
	cache := content.NewCache(client, logger)

	ctx := context.Background()
	if err := sessions.Restore(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "session restore failed: %v\n", err)
	}
	if claims, ok := sessions.Claims(); ok {
		fmt.Printf("welcome back, %s\n", displayName(claims))
	} else {
		fmt.Println("not signed in; use: login <email> <password>")
	}

	repl(ctx, cfg, sessions, cache)
}

func displayName(claims session.Claims) string {
	if claims.Username != "" {
		return claims.Username
	}
	if claims.Email != "" {
		return claims.Email
	}
	return claims.Subject
}

func repl(ctx context.Context, cfg *config.Config, sessions *session.Manager, cache *content.Cache) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: login signup otp logout whoami posts post comments comment like refresh quit")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		// One correlation id per command, so a command's API calls line up
		// in the logs.
		ctx := observability.WithCorrelationID(ctx, observability.GenerateCorrelationID())

		var err error
		switch args[0] {
		case "quit", "exit":
			return
		case "login":
			if len(args) != 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			if err = sessions.SignIn(ctx, args[1], args[2]); err == nil {
				claims, _ := sessions.Claims()
				fmt.Printf("signed in as %s (role %q)\n", displayName(claims), claims.Role)
			}
		case "signup":
			if len(args) != 5 {
				fmt.Println("usage: signup <email> <username> <password> <confirm>")
				continue
			}
			if err = sessions.SignUp(ctx, args[1], args[2], args[3], args[4]); err == nil {
				fmt.Println("account created, check your email for the OTP: otp <email> <code>")
			}
		case "otp":
			if len(args) != 3 {
				fmt.Println("usage: otp <email> <code>")
				continue
			}
			if err = sessions.VerifyOTP(ctx, args[1], args[2]); err == nil {
				if sessions.State() == session.Authenticated {
					fmt.Println("verified and signed in")
				} else {
					fmt.Println("verified; sign in with: login <email> <password>")
				}
			}
		case "logout":
			if err = sessions.Logout(ctx); err == nil {
				fmt.Println("signed out")
			}
		case "whoami":
			if claims, ok := sessions.Claims(); ok {
				fmt.Printf("%s (role %q, state %s)\n", displayName(claims), claims.Role, sessions.State())
			} else {
				fmt.Printf("not signed in (state %s)\n", sessions.State())
			}
		case "posts", "refresh":
			err = showPosts(ctx, cfg, cache)
		case "post":
			err = createPost(ctx, scanner, sessions, cache)
		case "comments":
			if len(args) != 2 {
				fmt.Println("usage: comments <post-id>")
				continue
			}
			err = showComments(ctx, cache, args[1])
		case "comment":
			if len(args) < 3 {
				fmt.Println("usage: comment <post-id> <text...>")
				continue
			}
			err = addComment(ctx, cache, args[1], strings.Join(args[2:], " "))
		case "like":
			if len(args) != 2 {
				fmt.Println("usage: like <post-id>")
				continue
			}
			err = toggleLike(ctx, cache, args[1])
		default:
			fmt.Printf("unknown command %q\n", args[0])
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// showPosts runs the launch sequence the screens use: posts first, then the
// like overlay merged onto the fresh list.
func showPosts(ctx context.Context, cfg *config.Config, cache *content.Cache) error {
	if _, err := cache.FetchPosts(ctx); err != nil {
		return err
	}
	if err := cache.FetchLikes(ctx); err != nil {
		return err
	}

	posts := cache.Posts()
	if len(posts) == 0 {
		fmt.Println("no posts yet")
		return nil
	}
	for _, p := range posts {
		liked := " "
		if p.Liked {
			liked = "*"
		}
		fmt.Printf("[%d] %s%s — %s (%d likes)\n", p.ID, liked, p.Title, p.Author, p.LikeCount)
		fmt.Printf("    %s\n", p.Body)
		if p.Image != "" {
			fmt.Printf("    image: %s\n", api.ResolveImageURL(cfg.CDNCloudName, p.Image))
		}
	}
	return nil
}

func createPost(ctx context.Context, scanner *bufio.Scanner, sessions *session.Manager, cache *content.Cache) error {
	if !sessions.IsBroadcaster() {
		fmt.Println("only broadcasters can post announcements")
		return nil
	}

	fmt.Print("title: ")
	if !scanner.Scan() {
		return nil
	}
	title := scanner.Text()
	fmt.Print("content: ")
	if !scanner.Scan() {
		return nil
	}
	body := scanner.Text()
	fmt.Print("image path (blank for none): ")
	if !scanner.Scan() {
		return nil
	}
	imagePath := strings.TrimSpace(scanner.Text())

	in := content.CreatePostInput{Title: title, Content: body}
	if imagePath != "" {
		file, err := os.Open(imagePath)
		if err != nil {
			return err
		}
		defer file.Close()
		in.Image = &api.FileAttachment{
			FieldName: "image",
			FileName:  filepath.Base(imagePath),
			Content:   file,
		}
	}

	post, err := cache.CreatePost(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("posted [%d] %s\n", post.ID, post.Title)
	return nil
}

func showComments(ctx context.Context, cache *content.Cache, rawID string) error {
	postID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid post id %q", rawID)
	}
	comments, err := cache.FetchComments(ctx, postID)
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		fmt.Println("no comments yet")
		return nil
	}
	for _, cm := range comments {
		fmt.Printf("  %s: %s\n", cm.Author, cm.Body)
	}
	return nil
}

func addComment(ctx context.Context, cache *content.Cache, rawID, text string) error {
	postID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid post id %q", rawID)
	}
	comment, err := cache.CreateComment(ctx, postID, text)
	if err != nil {
		return err
	}
	if comment == nil {
		return nil
	}
	fmt.Println("comment posted")
	return nil
}

func toggleLike(ctx context.Context, cache *content.Cache, rawID string) error {
	postID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid post id %q", rawID)
	}
	if err := cache.ToggleLike(ctx, postID); err != nil {
		return err
	}
	return cache.FetchLikes(ctx)
}
