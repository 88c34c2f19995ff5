package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/librarium/internal/api/handlers"
	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/config"
	"github.com/baharkarakas/librarium/internal/metrics"
	"github.com/baharkarakas/librarium/internal/middleware"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/services"
)

type RouterDeps struct {
	Cfg      config.Config
	Tokens   *auth.TokenManager
	Services *services.Services
}

func NewRouter(d RouterDeps) http.Handler {
	svc := d.Services
	authMW := middleware.NewAuthMiddleware(d.Tokens, svc.Users, d.Cfg.Env)
	limiter := middleware.NewRateLimiter(d.Cfg.RateRPS, d.Cfg.RateBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics)
	r.Use(middleware.SecurityHeaders, limiter.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))
	// /books and /books/ route alike
	r.Use(chimw.StripSlashes)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	books := &handlers.BookHandler{Books: svc.Books, Authors: svc.Authors}
	catalog := &handlers.CatalogHandler{Catalog: svc.Catalog}
	shelf := &handlers.ShelfHandler{Shelf: svc.Shelf}
	blog := &handlers.BlogHandler{Posts: svc.Posts, Comments: svc.Comments, Tags: svc.Tags}
	accounts := &handlers.AccountHandler{Users: svc.Users, PhotoMaxBytes: d.Cfg.PhotoMaxBytes}
	authH := handlers.NewAuthHandler(svc.Users)

	r.Group(func(r chi.Router) {
		r.Use(authMW.Auth)

		// ---------- auth & accounts ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)
		r.Get("/profile", accounts.Profile)
		r.Put("/profile", accounts.UpdateProfile)
		r.Put("/profile/photo", accounts.UploadPhoto)
		r.Delete("/users/{id:[0-9]+}", accounts.DeleteUser)
		r.Put("/users/{id:[0-9]+}/role", accounts.SetRole)
		r.Post("/users/{id:[0-9]+}/permissions", accounts.Grant)
		r.Delete("/users/{id:[0-9]+}/permissions", accounts.Revoke)

		// ---------- books & authors ----------
		r.Get("/books", books.List)
		r.Post("/books/create", books.Create)
		r.Put("/books/update", books.Update)
		r.Patch("/books/update", books.Update)
		r.Delete("/books/delete", books.Delete)
		r.Get("/books/{id:[0-9]+}", books.Get)
		r.Put("/books/{id:[0-9]+}/update", books.Update)
		r.Patch("/books/{id:[0-9]+}/update", books.Update)
		r.Delete("/books/{id:[0-9]+}/delete", books.Delete)

		r.Get("/authors", books.ListAuthors)
		r.Post("/authors", books.CreateAuthor)
		r.Get("/authors/{id:[0-9]+}", books.GetAuthor)
		r.Delete("/authors/{id:[0-9]+}", books.DeleteAuthor)

		// ---------- catalog ----------
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/books", catalog.Books)
			r.Post("/books/add", catalog.AddBook)
			r.Put("/books/{id:[0-9]+}/edit", catalog.EditBook)
			r.Delete("/books/{id:[0-9]+}/delete", catalog.DeleteBook)
			r.Get("/authors/{name}/books", catalog.BooksByAuthor)

			r.Get("/libraries", catalog.Libraries)
			r.Post("/libraries", catalog.CreateLibrary)
			r.Get("/libraries/{id:[0-9]+}", catalog.Library)
			r.Delete("/libraries/{id:[0-9]+}", catalog.DeleteLibrary)
			r.Get("/libraries/{id:[0-9]+}/books", catalog.LibraryBooks)
			r.Post("/libraries/{id:[0-9]+}/books", catalog.AddBookToLibrary)
			r.Delete("/libraries/{id:[0-9]+}/books/{bookID:[0-9]+}", catalog.RemoveBookFromLibrary)
			r.Get("/libraries/{id:[0-9]+}/librarian", catalog.Librarian)
			r.Post("/libraries/{id:[0-9]+}/librarian", catalog.AssignLibrarian)
			r.Delete("/libraries/{id:[0-9]+}/librarian", catalog.RemoveLibrarian)
			r.Get("/librarians/{id:[0-9]+}", catalog.LibrarianByID)

			r.Get("/admin", catalog.RoleView(models.RoleAdmin))
			r.Get("/librarian", catalog.RoleView(models.RoleLibrarian))
			r.Get("/member", catalog.RoleView(models.RoleMember))
		})

		// ---------- bookshelf ----------
		r.Route("/bookshelf", func(r chi.Router) {
			r.Get("/books", shelf.Browse)
			r.Get("/list", shelf.List)
			r.Post("/create", shelf.Create)
			r.Put("/{id:[0-9]+}/edit", shelf.Edit)
			r.Delete("/{id:[0-9]+}/delete", shelf.Delete)
		})

		// ---------- blog ----------
		r.Get("/posts", blog.ListPosts)
		r.Get("/search", blog.ListPosts)
		r.Get("/posts/{id:[0-9]+}", blog.GetPost)
		for _, prefix := range []string{"/posts", "/post"} {
			r.Post(prefix+"/new", blog.CreatePost)
			r.Delete(prefix+"/{id:[0-9]+}/delete", blog.DeletePost)
		}
		r.Put("/posts/{id:[0-9]+}/edit", blog.UpdatePost)
		r.Put("/post/{id:[0-9]+}/update", blog.UpdatePost)
		r.Post("/posts/{id:[0-9]+}/comments/new", blog.CreateComment)
		r.Put("/comments/{id:[0-9]+}/update", blog.UpdateComment)
		r.Delete("/comments/{id:[0-9]+}/delete", blog.DeleteComment)
		r.Get("/tags", blog.ListTags)
		r.Get("/tags/{name}", blog.PostsByTag)
	})

	return r
}
