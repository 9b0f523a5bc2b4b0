package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"quill/crud"
	"quill/domain"
	"quill/errs"
)

func (s *Server) registerCommentRoutes(r *mux.Router) {
	r.HandleFunc("/posts/{id:[0-9]+}/comment/", s.requireAuth(s.handleAddComment)).Methods("POST")
}

// handleAddComment handles the route "POST /posts/{id}/comment/".
// The comment's author is always the requesting actor. On success it
// redirects back to the post detail.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}

	actor := s.actor(r)
	in := domain.CommentInput{Text: r.PostFormValue("text")}
	comment, err := crud.ValidateCommentInput(&in, actor.User, id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.cs.Create(r.Context(), comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/posts/"+strconv.Itoa(id)+"/", http.StatusFound)
}
