// Package mockapi is a development stand-in for the campus-info backend. It
// reproduces the endpoint shapes the client must tolerate, including the
// quirks: an unscoped comments listing, a posts response that alternates
// between a bare array and a results envelope, and a polymorphic author
// field.
package mockapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OTP accepted by the verify endpoint for any pending registration.
const DevOTP = "123456"

type user struct {
	Email    string
	Username string
	Password string
	Role     string
	Verified bool
}

type post struct {
	ID        int64
	Title     string
	Content   string
	Author    string
	Image     string
	CreatedAt time.Time
}

type comment struct {
	ID        int64
	PostID    int64
	Content   string
	Author    string
	CreatedAt time.Time
}

// Server holds the in-memory state behind the mock endpoints.
type Server struct {
	mu        sync.Mutex
	secret    []byte
	users     map[string]*user
	posts     []post
	comments  []comment
	likes     map[int64]map[string]bool // post id -> set of liker emails
	nextPost  int64
	nextCmt   int64
	postCalls int
}

// NewServer seeds a mock backend with fake content and two known accounts:
// broadcaster@campus.edu and student@campus.edu, both with password
// "password".
func NewServer(secret string) *Server {
	gofakeit.Seed(time.Now().UnixNano())

	s := &Server{
		secret: []byte(secret),
		users: map[string]*user{
			"broadcaster@campus.edu": {Email: "broadcaster@campus.edu", Username: "faculty_officer", Password: "password", Role: "broadcaster", Verified: true},
			"student@campus.edu":     {Email: "student@campus.edu", Username: "student", Password: "password", Role: "user", Verified: true},
		},
		likes:    make(map[int64]map[string]bool),
		nextPost: 1,
		nextCmt:  1,
	}

	for i := 0; i < 8; i++ {
		p := post{
			ID:        s.nextPost,
			Title:     gofakeit.Sentence(4),
			Content:   gofakeit.Paragraph(1, 2, 8, "\n"),
			Author:    gofakeit.Username(),
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
		s.nextPost++
		s.posts = append(s.posts, p)
		for j := 0; j < gofakeit.Number(0, 3); j++ {
			s.comments = append(s.comments, comment{
				ID:        s.nextCmt,
				PostID:    p.ID,
				Content:   gofakeit.Sentence(8),
				Author:    gofakeit.Username(),
				CreatedAt: p.CreatedAt.Add(time.Duration(j+1) * time.Minute),
			})
			s.nextCmt++
		}
	}
	return s
}

// Register mounts the mock endpoints under /v1.
func (s *Server) Register(app *fiber.App) {
	v1 := app.Group("/v1")

	v1.Post("/user/login/", s.login)
	v1.Post("/user/register/", s.register)
	v1.Post("/user/verify-otp/", s.verifyOTP)

	authed := v1.Group("/post", s.authRequired)
	authed.Get("/posts/", s.listPosts)
	authed.Post("/posts/", s.createPost)
	authed.Get("/comments/", s.listComments)
	authed.Post("/comments/", s.createComment)
	authed.Get("/likes/", s.listLikes)
	authed.Post("/likes/", s.toggleLike)
}

func (s *Server) mintToken(u *user) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.Email,
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || u.Password != req.Password || !u.Verified {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "invalid credentials"})
	}

	token, err := s.mintToken(u)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "token minting failed"})
	}
	return c.JSON(fiber.Map{"access": token})
}

func (s *Server) register(c *fiber.Ctx) error {
	var req struct {
		Email           string `json:"email"`
		Username        string `json:"username"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "all fields are required"})
	}
	if req.Password != req.ConfirmPassword {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "passwords do not match"})
	}

	email := strings.ToLower(req.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "user already exists"})
	}
	s.users[email] = &user{Email: email, Username: req.Username, Password: req.Password, Role: "user"}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"detail": fmt.Sprintf("OTP sent to %s (dev OTP: %s)", email, DevOTP)})
}

func (s *Server) verifyOTP(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(req.Email)]
	if !ok || req.OTP != DevOTP {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "OTP verification failed"})
	}

	u.Verified = true
	token, err := s.mintToken(u)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "token minting failed"})
	}
	return c.JSON(fiber.Map{"token": token})
}

// authRequired validates the bearer token the way the real backend does.
func (s *Server) authRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "authorization header required"})
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "invalid or expired token"})
	}

	claims := token.Claims.(jwt.MapClaims)
	c.Locals("email", claims["email"])
	c.Locals("username", claims["username"])
	c.Locals("role", claims["role"])
	return c.Next()
}

func (s *Server) postJSON(p post, email string) fiber.Map {
	likers := s.likes[p.ID]
	return fiber.Map{
		"id":          p.ID,
		"title":       p.Title,
		"content":     p.Content,
		"author":      fiber.Map{"username": p.Author},
		"image":       p.Image,
		"created_at":  p.CreatedAt.Format(time.RFC3339),
		"likes_count": len(likers),
		"liked":       likers[email],
	}
}

func (s *Server) listPosts(c *fiber.Ctx) error {
	email, _ := c.Locals("email").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fiber.Map, 0, len(s.posts))
	for i := len(s.posts) - 1; i >= 0; i-- {
		out = append(out, s.postJSON(s.posts[i], email))
	}

	// The real backend cannot decide between a bare array and a paginated
	// envelope; alternate so clients keep tolerating both.
	s.postCalls++
	if s.postCalls%2 == 0 {
		return c.JSON(fiber.Map{"results": out, "count": len(out)})
	}
	return c.JSON(out)
}

func (s *Server) createPost(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != "broadcaster" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "broadcaster role required"})
	}

	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	if title == "" || content == "" {
		// Fall back to JSON bodies; the client only sends multipart when an
		// image rides along.
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := c.BodyParser(&req); err == nil {
			title = strings.TrimSpace(req.Title)
			content = strings.TrimSpace(req.Content)
		}
	}
	if title == "" || content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "title and content are required"})
	}

	var image string
	if file, err := c.FormFile("image"); err == nil && file != nil {
		image = "image/upload/dev/" + file.Filename
	}

	username, _ := c.Locals("username").(string)
	email, _ := c.Locals("email").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	p := post{
		ID:        s.nextPost,
		Title:     title,
		Content:   content,
		Author:    username,
		Image:     image,
		CreatedAt: time.Now(),
	}
	s.nextPost++
	s.posts = append(s.posts, p)
	return c.Status(fiber.StatusCreated).JSON(s.postJSON(p, email))
}

func (s *Server) listComments(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unscoped on purpose: every comment for every post, with the parent
	// reference embedded as an object on every other entry.
	out := make([]fiber.Map, 0, len(s.comments))
	for i := len(s.comments) - 1; i >= 0; i-- {
		cm := s.comments[i]
		entry := fiber.Map{
			"id":         cm.ID,
			"content":    cm.Content,
			"author":     cm.Author,
			"created_at": cm.CreatedAt.Format(time.RFC3339),
		}
		if cm.ID%2 == 0 {
			entry["post"] = fiber.Map{"id": cm.PostID}
		} else {
			entry["post"] = cm.PostID
		}
		out = append(out, entry)
	}
	return c.JSON(out)
}

func (s *Server) createComment(c *fiber.Ctx) error {
	var req struct {
		Post    int64  `json:"post"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "content is required"})
	}

	username, _ := c.Locals("username").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, p := range s.posts {
		if p.ID == req.Post {
			found = true
			break
		}
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "post not found"})
	}

	cm := comment{
		ID:        s.nextCmt,
		PostID:    req.Post,
		Content:   strings.TrimSpace(req.Content),
		Author:    username,
		CreatedAt: time.Now(),
	}
	s.nextCmt++
	s.comments = append(s.comments, cm)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         cm.ID,
		"post":       cm.PostID,
		"content":    cm.Content,
		"author":     cm.Author,
		"created_at": cm.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) listLikes(c *fiber.Ctx) error {
	email, _ := c.Locals("email").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fiber.Map, 0, len(s.likes))
	for postID, likers := range s.likes {
		out = append(out, fiber.Map{
			"post":        postID,
			"likes_count": len(likers),
			"liked":       likers[email],
		})
	}
	return c.JSON(out)
}

func (s *Server) toggleLike(c *fiber.Ctx) error {
	var req struct {
		Post int64 `json:"post"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body"})
	}

	email, _ := c.Locals("email").(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	likers, ok := s.likes[req.Post]
	if !ok {
		likers = make(map[string]bool)
		s.likes[req.Post] = likers
	}
	if likers[email] {
		delete(likers, email)
	} else {
		likers[email] = true
	}
	return c.JSON(fiber.Map{
		"post":        req.Post,
		"likes_count": len(likers),
		"liked":       likers[email],
	})
}
