package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"quill/cache"
	"quill/crud"
	"quill/domain"
	"quill/errs"
)

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It performs authentication and
// authorization before handing things over to one of the crud services. The
// responses are structured contexts; rendering them is the client's concern.
type Server struct {
	router *mux.Router
	logger *zap.Logger
	us     domain.UserService
	ps     domain.PostService
	gs     domain.GroupService
	cs     domain.CommentService
	fs     domain.FollowService
	is     domain.ImageService
	feed   *cache.FeedCache
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(services *crud.Services, feed *cache.FeedCache, logger *zap.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: logger,
		us:     services.User,
		ps:     services.Post,
		gs:     services.Group,
		cs:     services.Comment,
		fs:     services.Follow,
		is:     services.Image,
		feed:   feed,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the content system.
	s.registerPostRoutes(s.router)
	s.registerCommentRoutes(s.router)
	s.registerFollowRoutes(s.router)

	// Serve uploaded media straight off the media root.
	s.router.PathPrefix("/" + domain.MediaBaseDir + "/").Handler(
		http.StripPrefix("/"+domain.MediaBaseDir+"/",
			http.FileServer(http.Dir(domain.MediaBaseDir))))

	// Unknown paths get their own not-found presentation.
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	// Resolve the requesting user on every request.
	s.router.Use(s.authUser)
	return s
}

// Router exposes the underlying handler, mainly so tests can drive the
// server through httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// handleNotFound is the catch-all for unknown paths.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "Page not found."))
}

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}

// pageParam reads the requested feed page number. Anything non-numeric
// counts as the first page; range clamping happens during composition.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) error {
	addr := ":" + strconv.Itoa(port)
	s.logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.router)
}
