package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"videoninja/db"
	"videoninja/models"
	"videoninja/services"
	"videoninja/utils"
)

// stubProber knows assets by file name.
type stubProber map[string]*models.AssetRef

func (p stubProber) Load(_ context.Context, path string) (*models.AssetRef, error) {
	asset, ok := p[filepath.Base(path)]
	if !ok {
		return nil, errors.New("unreadable media")
	}
	loaded := *asset
	loaded.Path = path
	return &loaded, nil
}

func videoRef(d time.Duration) *models.AssetRef {
	return &models.AssetRef{
		Kind:     models.MediaKindVideo,
		Duration: d,
		Tracks:   []models.TrackInfo{{Kind: models.MediaKindVideo, Codec: "h264", Width: 1920, Height: 1080, Duration: d}},
	}
}

type HandlerSuite struct {
	suite.Suite

	root   string
	gate   chan struct{}
	router *gin.Engine
	token  string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.root = s.T().TempDir()
	s.gate = nil
	s.token = ""
	s.build("")
}

func (s *HandlerSuite) build(secret string) {
	capture := filepath.Join(s.root, "Capture")
	s.Require().NoError(utils.EnsureDirs(capture))
	for _, name := range []string{"beach.mov", "city.mov"} {
		s.Require().NoError(os.WriteFile(filepath.Join(capture, name), []byte("v"), 0644))
	}

	gdb, err := db.Open("sqlite", filepath.Join(s.root, "library.db"))
	s.Require().NoError(err)

	prober := stubProber{
		"beach.mov": videoRef(5 * time.Second),
		"city.mov":  videoRef(3 * time.Second),
		"clip.mov":  videoRef(2 * time.Second),
	}
	auth := services.NewGrantAuthorizer(gdb, models.AuthorizationAuthorized)
	library := services.NewLibraryService(gdb, filepath.Join(s.root, "Library"), auth, prober)

	renderer := renderFunc(func(ctx context.Context, args []string, _ time.Duration, progress utils.ProgressCallback) error {
		if s.gate != nil {
			select {
			case <-s.gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		progress(utils.Progress{Percent: 100})
		return os.WriteFile(args[len(args)-1], []byte("movie"), 0644)
	})
	exporter := services.NewExportService(renderer, utils.HighestQuality("ultrafast", 23, "128k"))

	picker := services.NewPickerService(prober, map[models.Source]services.MediaSource{
		models.SourceCamera:     services.DirSource{Dir: capture, Kind: models.MediaKindVideo, Exts: utils.VideoExtensions},
		models.SourceSavedAlbum: services.LibrarySource{Library: library, Kind: models.MediaKindVideo},
	})
	merger := services.NewMergeService(
		services.NewComposerService(),
		services.NewInstructionBuilder(30, models.RenderSize{Width: 1280, Height: 720}),
		exporter,
		library,
		filepath.Join(s.root, "Documents"),
	)

	s.router = NewRouter(
		[]string{"http://localhost:3000"},
		secret,
		NewVideoHandler(services.NewSessionStore(), picker, merger, exporter),
		NewLibraryHandler(library, auth, filepath.Join(s.root, "uploads")),
	)
}

type renderFunc func(ctx context.Context, args []string, total time.Duration, progress utils.ProgressCallback) error

func (f renderFunc) Render(ctx context.Context, args []string, total time.Duration, progress utils.ProgressCallback) error {
	return f(ctx, args, total, progress)
}

func (s *HandlerSuite) send(req *http.Request) *httptest.ResponseRecorder {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req)
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *HandlerSuite) newSession() string {
	w := s.do(http.MethodPost, "/api/sessions", nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	var resp models.CreateSessionResponse
	s.decode(w, &resp)
	return resp.SessionID
}

func (s *HandlerSuite) pick(session string, req models.PickRequest) models.PickResponse {
	w := s.do(http.MethodPost, "/api/sessions/"+session+"/pick", req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp models.PickResponse
	s.decode(w, &resp)
	return resp
}

func (s *HandlerSuite) loadBoth(session string) {
	first := s.pick(session, models.PickRequest{Slot: models.SlotFirstVideo, Source: models.SourceCamera, ItemID: "beach.mov"})
	s.Require().Equal("loaded", first.Status)
	second := s.pick(session, models.PickRequest{Slot: models.SlotSecondVideo, Source: models.SourceCamera, ItemID: "city.mov"})
	s.Require().Equal("loaded", second.Status)
}

func (s *HandlerSuite) merge(session string) string {
	w := s.do(http.MethodPost, "/api/sessions/"+session+"/merge", nil)
	s.Require().Equal(http.StatusAccepted, w.Code, w.Body.String())
	var resp models.MergeResponse
	s.decode(w, &resp)
	return resp.JobID
}

func (s *HandlerSuite) settled(session string) {
	s.Require().Eventually(func() bool {
		var resp models.SessionResponse
		s.decode(s.do(http.MethodGet, "/api/sessions/"+session, nil), &resp)
		return !resp.Merging
	}, 5*time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) status(jobID string) models.StatusResponse {
	w := s.do(http.MethodGet, "/api/jobs/"+jobID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp models.StatusResponse
	s.decode(w, &resp)
	return resp
}

func (s *HandlerSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "healthy")
}

func (s *HandlerSuite) TestMergeAndSave() {
	session := s.newSession()
	s.loadBoth(session)

	jobID := s.merge(session)
	s.settled(session)

	status := s.status(jobID)
	s.Equal(models.ExportStatusCompleted, status.Status)
	s.Equal(100.0, status.Progress)
	s.Require().NotNil(status.VideoURL)
	s.Require().NotNil(status.Dialog)
	s.Equal(models.Dialog{Title: "Success", Message: "Video saved"}, *status.Dialog)
	s.Nil(status.Error)

	w := s.do(http.MethodGet, *status.VideoURL, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("movie", w.Body.String())
	s.Contains(w.Header().Get("Content-Disposition"), "mergeVideo-")

	var items []models.LibraryItemResponse
	s.decode(s.do(http.MethodGet, "/api/library?kind=video", nil), &items)
	s.Require().Len(items, 1)
	s.Equal(models.OriginMerged, items[0].Origin)

	w = s.do(http.MethodGet, items[0].PlayURL, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("movie", w.Body.String())
}

func (s *HandlerSuite) TestMergeDenied() {
	w := s.do(http.MethodPut, "/api/authorization", models.AuthorizationRequest{Status: models.AuthorizationDenied})
	s.Require().Equal(http.StatusOK, w.Code)

	session := s.newSession()
	s.loadBoth(session)
	jobID := s.merge(session)
	s.settled(session)

	status := s.status(jobID)
	s.Equal(models.ExportStatusCompleted, status.Status)
	s.Nil(status.Dialog)

	var items []models.LibraryItemResponse
	s.decode(s.do(http.MethodGet, "/api/library", nil), &items)
	s.Empty(items)

	var auth models.AuthorizationResponse
	s.decode(s.do(http.MethodGet, "/api/authorization", nil), &auth)
	s.Equal(LocalSubject, auth.Subject)
	s.Equal(models.AuthorizationDenied, auth.Status)
}

func (s *HandlerSuite) TestMergeRequiresBothVideos() {
	session := s.newSession()
	s.pick(session, models.PickRequest{Slot: models.SlotFirstVideo, Source: models.SourceCamera, ItemID: "beach.mov"})

	w := s.do(http.MethodPost, "/api/sessions/"+session+"/merge", nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Contains(w.Body.String(), "both videos")
}

func (s *HandlerSuite) TestMergeInProgressAndCancel() {
	s.gate = make(chan struct{})
	session := s.newSession()
	s.loadBoth(session)
	jobID := s.merge(session)

	w := s.do(http.MethodPost, "/api/sessions/"+session+"/merge", nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/jobs/"+jobID+"/download", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/jobs/"+jobID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var status models.StatusResponse
	s.decode(w, &status)
	s.Equal(models.ExportStatusCancelled, status.Status)
	s.Require().NotNil(status.Error)

	w = s.do(http.MethodDelete, "/api/jobs/"+jobID, nil)
	s.Equal(http.StatusConflict, w.Code)

	s.settled(session)
	s.gate = nil
	s.merge(session)
	s.settled(session)
}

func (s *HandlerSuite) TestPickOutcomes() {
	session := s.newSession()

	cancelled := s.pick(session, models.PickRequest{Slot: models.SlotFirstVideo, Source: models.SourceCamera, Cancel: true})
	s.Equal("cancelled", cancelled.Status)
	s.Nil(cancelled.Dialog)

	loaded := s.pick(session, models.PickRequest{Slot: models.SlotSecondVideo, Source: models.SourceCamera, ItemID: "city.mov"})
	s.Equal("loaded", loaded.Status)
	s.Equal(&models.Dialog{Title: "Asset Loaded", Message: "Video two loaded"}, loaded.Dialog)

	var resp models.SessionResponse
	s.decode(s.do(http.MethodGet, "/api/sessions/"+session, nil), &resp)
	s.Nil(resp.FirstVideo)
	s.Require().NotNil(resp.SecondVideo)
	s.Equal(3*time.Second, resp.SecondVideo.Duration)

	w := s.do(http.MethodPost, "/api/sessions/"+session+"/pick", models.PickRequest{Slot: models.SlotAudio, Source: models.SourceAudioLibrary, ItemID: "song.m4a"})
	s.Equal(http.StatusServiceUnavailable, w.Code)
	var unavailable models.PickResponse
	s.decode(w, &unavailable)
	s.Equal("unavailable", unavailable.Status)
	s.Equal(&models.Dialog{Title: "Not Available", Message: "No Saved Album found"}, unavailable.Dialog)
	s.NotEmpty(unavailable.Error)

	w = s.do(http.MethodPost, "/api/sessions/"+session+"/pick", models.PickRequest{Slot: models.SlotFirstVideo, Source: models.SourceCamera, ItemID: "missing.mov"})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestPickValidation() {
	session := s.newSession()

	w := s.do(http.MethodPost, "/api/sessions/"+session+"/pick", map[string]string{"slot": "third_video", "source": "camera"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/sessions/"+session+"/pick", map[string]string{"slot": "audio"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/sessions/"+session+"/pick", models.PickRequest{Slot: models.SlotAudio, Source: models.SourceCamera})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/sessions/nope/pick", models.PickRequest{Slot: models.SlotAudio, Source: models.SourceCamera, Cancel: true})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/jobs/nope", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/library?kind=photo", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/authorization", map[string]string{"status": "not_determined"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) upload(name, content string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	s.Require().NoError(err)
	_, err = part.Write([]byte(content))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/record", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.send(req)
}

func (s *HandlerSuite) TestRecord() {
	w := s.upload("clip.mov", "captured")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var saved models.RecordResponse
	s.decode(w, &saved)
	s.NotEmpty(saved.ItemID)
	s.Equal(&models.Dialog{Title: "Success", Message: "Video was saved"}, saved.Dialog)

	w = s.upload("broken.mov", "junk")
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	var failed models.RecordResponse
	s.decode(w, &failed)
	s.Equal(&models.Dialog{Title: "Error", Message: "Video failed to save"}, failed.Dialog)

	w = s.upload("notes.txt", "text")
	s.Equal(http.StatusBadRequest, w.Code)

	var items []models.LibraryItemResponse
	s.decode(s.do(http.MethodGet, "/api/library", nil), &items)
	s.Require().Len(items, 1)
	s.Equal("clip", items[0].Title)
	s.Equal(models.OriginRecorded, items[0].Origin)
}

func (s *HandlerSuite) TestRecordDenied() {
	s.Require().Equal(http.StatusOK, s.do(http.MethodPut, "/api/authorization", models.AuthorizationRequest{Status: models.AuthorizationDenied}).Code)

	w := s.upload("clip.mov", "captured")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestBearerToken() {
	s.build("secret")

	w := s.do(http.MethodPost, "/api/sessions", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	forged, err := IssueToken("other", "mallory", time.Hour)
	s.Require().NoError(err)
	s.token = forged
	w = s.do(http.MethodPost, "/api/sessions", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	s.token, err = IssueToken("secret", "alice", time.Hour)
	s.Require().NoError(err)
	w = s.do(http.MethodPut, "/api/authorization", models.AuthorizationRequest{Status: models.AuthorizationAuthorized})
	s.Require().Equal(http.StatusOK, w.Code)
	var auth models.AuthorizationResponse
	s.decode(w, &auth)
	s.Equal("alice", auth.Subject)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health", nil).Code)
}

func (s *HandlerSuite) TestSessionsAndJobsBelongToTheirSubject() {
	s.build("secret")
	alice, err := IssueToken("secret", "alice", time.Hour)
	s.Require().NoError(err)
	bob, err := IssueToken("secret", "bob", time.Hour)
	s.Require().NoError(err)

	s.token = alice
	session := s.newSession()
	s.loadBoth(session)
	jobID := s.merge(session)
	s.settled(session)
	s.Equal(models.ExportStatusCompleted, s.status(jobID).Status)

	s.token = bob
	for _, req := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/sessions/" + session, nil},
		{http.MethodPost, "/api/sessions/" + session + "/pick", models.PickRequest{Slot: models.SlotFirstVideo, Source: models.SourceCamera, ItemID: "city.mov"}},
		{http.MethodPost, "/api/sessions/" + session + "/merge", nil},
		{http.MethodGet, "/api/jobs/" + jobID, nil},
		{http.MethodDelete, "/api/jobs/" + jobID, nil},
		{http.MethodGet, "/api/jobs/" + jobID + "/download", nil},
	} {
		w := s.do(req.method, req.path, req.body)
		s.Equal(http.StatusNotFound, w.Code, "%s %s", req.method, req.path)
	}

	s.token = alice
	var resp models.SessionResponse
	s.decode(s.do(http.MethodGet, "/api/sessions/"+session, nil), &resp)
	s.Require().NotNil(resp.FirstVideo)
	s.Equal(5*time.Second, resp.FirstVideo.Duration, "bob's pick must not replace alice's video")
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/jobs/"+jobID+"/download", nil).Code)
}
