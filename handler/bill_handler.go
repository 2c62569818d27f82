package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Aashish23092/bill-extraction/dto"
	"github.com/Aashish23092/bill-extraction/service"
)

// DocumentDownloader fetches a remote document to a local file owned by the caller.
type DocumentDownloader interface {
	Download(ctx context.Context, rawURL string) (string, error)
}

type BillHandler struct {
	billService *service.BillService
	downloader  DocumentDownloader
	maxFileSize int64
}

func NewBillHandler(billService *service.BillService, downloader DocumentDownloader, maxFileSize int64) *BillHandler {
	return &BillHandler{
		billService: billService,
		downloader:  downloader,
		maxFileSize: maxFileSize,
	}
}

// ExtractBillData handles POST /extract-bill-data
func (h *BillHandler) ExtractBillData(c *gin.Context) {
	logger := requestLogger(c)
	logger.Info("Received bill extraction request")

	var request dto.ExtractBillRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, logger, http.StatusBadRequest, dto.ErrMissingDocument)
		return
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, logger, http.StatusBadRequest, err)
		return
	}

	localPath, err := h.downloader.Download(c.Request.Context(), request.Document)
	if err != nil {
		h.sendError(c, logger, http.StatusBadRequest, err)
		return
	}
	defer os.Remove(localPath)

	h.process(c, logger, localPath)
}

// UploadBill handles POST /api/v1/bills/extract with a multipart "file"
func (h *BillHandler) UploadBill(c *gin.Context) {
	logger := requestLogger(c)

	file, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, logger, http.StatusBadRequest, errors.New("file is required"))
		return
	}

	request := &dto.BillUploadRequest{File: file}
	if err := request.Validate(); err != nil {
		h.sendError(c, logger, http.StatusBadRequest, err)
		return
	}
	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		h.sendError(c, logger, http.StatusRequestEntityTooLarge, errors.New("file too large"))
		return
	}

	localPath := filepath.Join(os.TempDir(), uuid.NewString()+"-"+filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		h.sendError(c, logger, http.StatusInternalServerError, err)
		return
	}
	defer os.Remove(localPath)

	logger.Printf("Processing uploaded bill: %s", file.Filename)
	h.process(c, logger, localPath)
}

func (h *BillHandler) process(c *gin.Context, logger *log.Entry, localPath string) {
	result, err := h.billService.ProcessDocument(c.Request.Context(), localPath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dto.ErrUnsupportedFile) {
			status = http.StatusBadRequest
		}
		h.sendError(c, logger, status, err)
		return
	}

	logger.Info("Bill extraction completed successfully")
	c.JSON(http.StatusOK, dto.ExtractBillResponse{
		IsSuccess: true,
		Data:      result,
	})
}

// sendError sends a structured error response
func (h *BillHandler) sendError(c *gin.Context, logger *log.Entry, statusCode int, err error) {
	logger.WithField("status", statusCode).Errorf("Request failed: %v", err)

	c.JSON(statusCode, dto.ErrorResponse{
		IsSuccess: false,
		Error:     err.Error(),
	})
}

func requestLogger(c *gin.Context) *log.Entry {
	reqID := c.GetHeader("X-Request-ID")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	c.Header("X-Request-ID", reqID)
	return log.WithFields(log.Fields{"req_id": reqID, "path": c.FullPath()})
}
