package controllerImp

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"ragchat/entities"
	"ragchat/pkg/ingest/service"
)

type IngestCtrl struct{ svc service.IngestService }

func New(svc service.IngestService) *IngestCtrl { return &IngestCtrl{svc} }

// Upload accepts a multipart batch under the "files" field and starts
// an ingestion job. The response carries the job id; progress is
// polled via Status.
func (h *IngestCtrl) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "multipart form expected"})
	}
	headers := form.File["files"]

	files := make([]entities.IncomingFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "cannot read " + fh.Filename})
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "cannot read " + fh.Filename})
		}
		files = append(files, entities.IncomingFile{Filename: fh.Filename, Content: content})
	}

	jobID, err := h.svc.Submit(c.Request().Context(), files)
	if err != nil {
		return c.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	job, err := h.svc.Status(jobID)
	if err != nil {
		return c.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, job)
}

func (h *IngestCtrl) Status(c echo.Context) error {
	job, err := h.svc.Status(c.Param("job_id"))
	if err != nil {
		return c.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, job)
}

func (h *IngestCtrl) Delete(c echo.Context) error {
	jobID := c.Param("job_id")
	if err := h.svc.Delete(c.Request().Context(), jobID); err != nil {
		return c.JSON(errStatus(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"job_id": jobID, "message": "job deleted"})
}

func errStatus(err error) int {
	var verr *entities.ValidationError
	var nferr *entities.NotFoundError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &nferr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
