package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/bjarke-xyz/portfolio/internal/server/html"
	"github.com/bjarke-xyz/portfolio/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

// multipart bodies carry the form fields next to the image
const formOverheadBytes = 1 << 20

func (s *server) base(r *http.Request, title string) html.Base {
	b := html.Base{Title: title, Errors: queryErrors(r), Notice: queryNotice(r)}
	if session, ok := SessionFromContext(r.Context()); ok {
		b.Session = &session
	}
	return b
}

// listApps falls back to an empty list; the failure is logged and shown.
func (s *server) listApps(r *http.Request, b *html.Base) []domain.Application {
	apps, err := s.directory.ListApps(r.Context())
	directoryOps.WithLabelValues("list", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("error listing apps", "error", err)
		b.Errors = append(b.Errors, "Error getting apps")
		return []domain.Application{}
	}
	return apps
}

func (s *server) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	b := s.base(r, "Admin")
	apps := s.listApps(r, &b)

	dialog := domain.DeleteDialog{State: domain.DeleteIdle}
	if appId := r.URL.Query().Get("delete"); appId != "" {
		app, ok := lo.Find(apps, func(a domain.Application) bool { return a.ID == appId })
		if ok {
			state, _ := dialog.State.Next(domain.DeleteRequested)
			dialog = domain.DeleteDialog{State: state, AppID: app.ID, Title: app.Title}
		} else {
			b.Errors = append(b.Errors, "App not found")
		}
	}
	s.render(w, http.StatusOK, func(wr io.Writer) error {
		return html.AdminPage(wr, html.AdminParams{Base: b, Apps: apps, Dialog: dialog})
	})
}

// handleDeleteApp is the confirm step of the delete dialog. On success the
// list is fetched again through a redirect; on failure the dialog stays open.
func (s *server) handleDeleteApp(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	appId := chi.URLParam(r, "app-id")
	state, _ := domain.DeleteConfirmPending.Next(domain.DeleteConfirmed)

	err := s.directory.DeleteApp(r.Context(), appId)
	directoryOps.WithLabelValues("delete", resultLabel(err)).Inc()
	if err != nil {
		state, _ = state.Next(domain.DeleteFailed)
		s.logger.Error("failed to delete app", "error", err, "appId", appId, "userId", session.UserID)

		b := s.base(r, "Admin")
		apps := s.listApps(r, &b)
		dialog := domain.DeleteDialog{State: state, AppID: appId, Error: domain.Message(err)}
		if app, ok := lo.Find(apps, func(a domain.Application) bool { return a.ID == appId }); ok {
			dialog.Title = app.Title
		}
		s.render(w, statusFor(err), func(wr io.Writer) error {
			return html.AdminPage(wr, html.AdminParams{Base: b, Apps: apps, Dialog: dialog})
		})
		return
	}
	state, _ = state.Next(domain.DeleteSucceeded)
	s.logger.Info("deleted app", "appId", appId, "userId", session.UserID, "dialog", state.String())
	http.Redirect(w, r, adminListPath("deleted"), http.StatusSeeOther)
}

func (s *server) handleGetNewApp(w http.ResponseWriter, r *http.Request) {
	s.renderAppForm(w, r, http.StatusOK, "New application", "/admin/new", "", domain.AppFields{}, nil)
}

func (s *server) handlePostNewApp(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	fields, err := s.parseAppForm(w, r)
	if err == nil {
		var app domain.Application
		app, err = s.directory.CreateApp(r.Context(), fields)
		directoryOps.WithLabelValues("create", resultLabel(err)).Inc()
		if err == nil {
			s.logger.Info("created app", "appId", app.ID, "userId", session.UserID)
			http.Redirect(w, r, adminListPath("created"), http.StatusSeeOther)
			return
		}
	}
	s.logger.Error("failed to create app", "error", err, "userId", session.UserID)
	s.renderAppForm(w, r, statusFor(err), "New application", "/admin/new", "", fields, err)
}

func (s *server) handleGetEditApp(w http.ResponseWriter, r *http.Request) {
	appId := chi.URLParam(r, "app-id")
	app, err := s.directory.GetApp(r.Context(), appId)
	directoryOps.WithLabelValues("get", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("error getting app", "error", err, "appId", appId)
		toast := "app_load"
		if errors.Is(err, domain.ErrNotFound) {
			toast = "app_not_found"
		}
		http.Redirect(w, r, "/admin/?"+errorQuery(toast), http.StatusSeeOther)
		return
	}
	s.renderAppForm(w, r, http.StatusOK, "Edit application", editPath(appId), appId, app.Fields(), nil)
}

func (s *server) handlePostEditApp(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	appId := chi.URLParam(r, "app-id")
	fields, err := s.parseAppForm(w, r)
	if err == nil {
		_, err = s.directory.UpdateApp(r.Context(), appId, fields)
		directoryOps.WithLabelValues("update", resultLabel(err)).Inc()
		if err == nil {
			s.logger.Info("updated app", "appId", appId, "userId", session.UserID)
			http.Redirect(w, r, adminListPath("updated"), http.StatusSeeOther)
			return
		}
	}
	s.logger.Error("failed to update app", "error", err, "appId", appId, "userId", session.UserID)
	s.renderAppForm(w, r, statusFor(err), "Edit application", editPath(appId), appId, fields, err)
}

func (s *server) renderAppForm(w http.ResponseWriter, r *http.Request, status int, title string, action string, appId string, fields domain.AppFields, err error) {
	b := s.base(r, title)
	if err != nil {
		b.Errors = append(b.Errors, domain.Message(err))
	}
	s.render(w, status, func(wr io.Writer) error {
		return html.AppPage(wr, html.AppParams{Base: b, Action: action, AppID: appId, Fields: fields})
	})
}

// parseAppForm reads the app fields. A file in the "image" field is
// uploaded first and its URL replaces image_url.
func (s *server) parseAppForm(w http.ResponseWriter, r *http.Request) (domain.AppFields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.imageMaxBytes+formOverheadBytes)
	err := r.ParseMultipartForm(s.imageMaxBytes + formOverheadBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return domain.AppFields{}, domain.NewValidationError("could not read form: " + err.Error())
	}
	fields := domain.AppFields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		AppURL:      r.FormValue("app_url"),
		ImageURL:    r.FormValue("image_url"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return fields, nil
	}
	if err != nil {
		return fields, domain.NewValidationError("could not read image: " + err.Error())
	}
	defer file.Close()
	if header.Size == 0 {
		return fields, nil
	}
	imageURL, err := s.uploadImage(r, file, header)
	if err != nil {
		return fields, err
	}
	fields.ImageURL = imageURL
	return fields, nil
}

func (s *server) uploadImage(r *http.Request, file multipart.File, header *multipart.FileHeader) (string, error) {
	var image *service.ImageFile
	if file != nil && header != nil {
		image = &service.ImageFile{Name: header.Filename, Body: file}
	}
	imageURL, err := s.uploader.UploadImage(r.Context(), image)
	imageUploads.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("failed to upload image", "error", err)
		return "", err
	}
	s.logger.Info("uploaded image", "url", imageURL)
	return imageURL, nil
}

type uploadResponse struct {
	URL string `json:"url"`
}

// handleUpload stores a single image and returns its public URL. The
// form that triggered it links the URL to an app later, if ever.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.imageMaxBytes+formOverheadBytes)
	err := r.ParseMultipartForm(s.imageMaxBytes + formOverheadBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		jsonResponse(w, http.StatusUnprocessableEntity, errorBody{Error: "could not read upload"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		jsonResponse(w, http.StatusUnprocessableEntity, errorBody{Error: "could not read upload"})
		return
	}
	if file != nil {
		defer file.Close()
	}
	imageURL, err := s.uploadImage(r, file, header)
	if err != nil {
		jsonResponse(w, statusFor(err), errorBody{Error: domain.Message(err)})
		return
	}
	jsonResponse(w, http.StatusOK, uploadResponse{URL: imageURL})
}

func editPath(appId string) string {
	return "/admin/edit/" + appId
}
