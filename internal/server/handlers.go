package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/dkathuria/codeaudit/internal/keypool"
	"github.com/dkathuria/codeaudit/internal/review"
	"github.com/dkathuria/codeaudit/internal/store"
)

// handleAnalyze accepts a multipart upload ("files" field, any count), runs
// every eligible file through the analysis chain, and returns the per-file
// reports. Files with non-matching extensions or inside skipped folders are
// ignored. A per-file failure is reported in that file's result and the batch
// continues; key-pool exhaustion stops the batch and returns 503 with the
// partial results.
func (s *Server) handleAnalyze(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid multipart form: " + err.Error()})
		return
	}

	var eligible []*multipart.FileHeader
	for _, fh := range form.File["files"] {
		if !s.hasAllowedExtension(fh.Filename) || s.filter.Skip(fh.Filename) {
			continue
		}
		eligible = append(eligible, fh)
	}
	if len(eligible) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("No %s files found in the uploaded folder", strings.Join(s.cfg.Extensions, "/")),
		})
		return
	}

	s.analyzeMu.Lock()
	defer s.analyzeMu.Unlock()

	// Each upload is an independent batch: start rotation from the first key.
	s.keys.Reset()

	results := make([]review.Result, 0, len(eligible))
	for _, fh := range eligible {
		result, err := s.analyzeFile(c, fh)
		results = append(results, result)

		var exhausted *keypool.ExhaustedError
		if errors.As(err, &exhausted) {
			s.log.Warnf("stopping batch: %v", exhausted)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"detail":  exhausted.Error(),
				"results": results,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// analyzeFile runs one uploaded file through the engine. Failures are folded
// into the result so the batch can carry on; the error is also returned so
// the caller can react to terminal conditions like key exhaustion.
func (s *Server) analyzeFile(c *gin.Context, fh *multipart.FileHeader) (review.Result, error) {
	start := time.Now()

	code, err := readUpload(fh)
	if err == nil {
		var state *review.State
		state, err = s.engine.Run(c.Request.Context(), code)
		if err == nil {
			result := review.Result{
				Filename:  fh.Filename,
				Report:    state.FinalReport,
				FixedCode: state.FixedCode,
			}
			s.saveRun(fh.Filename, store.StatusOK, &result, "", start)
			return result, nil
		}
	}

	result := review.Result{
		Filename: fh.Filename,
		Report:   "Error processing file: " + err.Error(),
	}
	s.saveRun(fh.Filename, store.StatusError, &result, err.Error(), start)
	return result, err
}

func (s *Server) saveRun(filename, status string, result *review.Result, errMsg string, start time.Time) {
	if s.store == nil {
		return
	}
	run := &store.Run{
		Filename:   filename,
		Status:     status,
		Report:     result.Report,
		FixedCode:  result.FixedCode,
		ErrorMsg:   errMsg,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err := s.store.SaveRun(run); err != nil {
		s.log.Errorf("saving run for %s: %v", filename, err)
	}
}

func (s *Server) hasAllowedExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range s.cfg.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func readUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}

// handleHistory returns recent analysis runs, newest first.
func (s *Server) handleHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []store.Run{}})
		return
	}
	runs, err := s.store.RecentRuns(s.cfg.HistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "keys": s.keys.Size()})
}
