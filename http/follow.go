package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"quill/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/profile/{username}/follow/", s.requireAuth(s.handleFollow)).Methods("GET")
	r.HandleFunc("/profile/{username}/unfollow/", s.requireAuth(s.handleUnfollow)).Methods("GET")
}

// handleFollow handles the route "GET /profile/{username}/follow/".
// Following yourself or someone you already follow changes nothing; either
// way the client ends up back on the profile.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	actor := s.actor(r)
	if err := s.fs.Follow(r.Context(), actor.User.ID, author.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+username+"/", http.StatusFound)
}

// handleUnfollow handles the route "GET /profile/{username}/unfollow/".
// Removing a follow that does not exist is a no-op.
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	actor := s.actor(r)
	if err := s.fs.Unfollow(r.Context(), actor.User.ID, author.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+username+"/", http.StatusFound)
}
