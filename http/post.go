package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"quill/crud"
	"quill/domain"
	"quill/errs"
)

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/group/{slug}/", s.handleGroupFeed).Methods("GET")
	r.HandleFunc("/profile/{username}/", s.handleProfileFeed).Methods("GET")
	r.HandleFunc("/follow/", s.requireAuth(s.handleFollowFeed)).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/", s.handlePostDetail).Methods("GET")
	r.HandleFunc("/create/", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/edit/", s.requireAuth(s.handleEditPost)).Methods("POST")
}

// handleIndex handles the route "GET /".
// It returns one page of the global feed. The composed page is cached for a
// fixed window and served from the cache within it, so recent writes may
// take up to the window length to show.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	if cached, ok := s.feed.GetIndex(r.Context(), page); ok {
		respondJSON(w, r, http.StatusOK, cached)
		return
	}
	feed, err := s.ps.IndexFeed(r.Context(), page)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.feed.SetIndex(r.Context(), page, feed)
	respondJSON(w, r, http.StatusOK, feed)
}

// handleGroupFeed handles the route "GET /group/{slug}/".
// It returns the group and one page of its posts.
func (s *Server) handleGroupFeed(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	group, err := s.gs.BySlug(r.Context(), slug)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	feed, err := s.ps.GroupFeed(r.Context(), group, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, struct {
		Group *domain.Group `json:"group"`
		Page  *domain.Page  `json:"page"`
	}{group, feed})
}

// handleProfileFeed handles the route "GET /profile/{username}/".
// It returns the author, one page of their posts, and whether the viewing
// actor already follows them.
func (s *Server) handleProfileFeed(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	profile, err := s.ps.ProfileFeed(r.Context(), username, s.actor(r), pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, profile)
}

// handleFollowFeed handles the route "GET /follow/".
// It returns one page of posts by authors the actor follows.
func (s *Server) handleFollowFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.ps.FollowFeed(r.Context(), s.actor(r), pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, feed)
}

// handlePostDetail handles the route "GET /posts/{id}/".
// It returns the post along with its comments in creation order.
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	post, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, post)
}

// handleCreatePost handles the route "POST /create/".
// The author of the new post is always the requesting actor, regardless of
// anything in the payload. On success it redirects to the actor's profile.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	actor := s.actor(r)

	in, err := parsePostInput(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := crud.ValidatePostInput(in, actor.User)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ps.Create(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	if in.Image != nil {
		if err := s.storePostImage(r, post, in.Image); err != nil {
			// No partial state: a post whose image was rejected goes away
			// with the image.
			if derr := s.ps.Delete(r.Context(), post); derr != nil {
				errs.LogError(r, derr)
			}
			errs.ReturnError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/profile/"+actor.User.Username+"/", http.StatusFound)
}

// handleEditPost handles the route "POST /posts/{id}/edit/".
// Only the post's author may edit it; text, group and image are the mutable
// fields. On success it redirects to the post detail.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	post, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	actor := s.actor(r)
	if post.UserID != actor.User.ID {
		errs.ReturnError(w, r, errs.Errorf(errs.EFORBIDDEN, "You are not allowed to edit this post."))
		return
	}

	in, err := parsePostInput(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if _, err := crud.ValidatePostInput(in, actor.User); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post.Text = in.Text
	post.GroupID = in.GroupID

	if in.Image != nil {
		s.dropPostImages(r, post)
		if err := s.storePostImage(r, post, in.Image); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	if err := s.ps.Update(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/posts/"+strconv.Itoa(post.ID)+"/", http.StatusFound)
}

// dropPostImages removes the post's stored image files. Uploading a new
// image replaces the old one, and posts only ever reference a single image,
// so the files would otherwise linger unreferenced. Leftover files are a
// cleanup concern, not a request failure.
func (s *Server) dropPostImages(r *http.Request, post *domain.Post) {
	images, err := s.is.ByOwner(domain.OwnerTypePost, post.ID)
	if err != nil {
		errs.LogError(r, err)
		return
	}
	for i := range images {
		if err := s.is.Delete(&images[i]); err != nil {
			errs.LogError(r, err)
		}
	}
}

// storePostImage saves an uploaded image under the post and records its path.
func (s *Server) storePostImage(r *http.Request, post *domain.Post, img *domain.Image) error {
	img.OwnerType = domain.OwnerTypePost
	img.OwnerID = post.ID
	if err := s.is.Create(img); err != nil {
		return err
	}
	post.ImageURL = img.URL
	return s.ps.Update(r.Context(), post)
}

// parsePostInput reads the typed post form out of the request. The form is
// multipart when an image is attached, urlencoded otherwise.
func parsePostInput(r *http.Request) (*domain.PostInput, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
			return nil, errs.Errorf(errs.EINVALID, "Invalid form data.")
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, errs.Errorf(errs.EINVALID, "Invalid form data.")
	}

	in := &domain.PostInput{
		Text: r.PostFormValue("text"),
	}
	if g := r.PostFormValue("group"); g != "" {
		groupID, err := strconv.Atoi(g)
		if err != nil {
			return nil, errs.Errorf(errs.EINVALID, "Invalid group id.")
		}
		in.GroupID = &groupID
	}
	if r.MultipartForm != nil {
		if file, header, err := r.FormFile("image"); err == nil {
			in.Image = &domain.Image{
				File:     file,
				Filename: header.Filename,
				Size:     header.Size,
			}
		}
	}
	return in, nil
}
