package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
)

func gcsBucket() string {
	if b := os.Getenv("GCS_BUCKET"); b != "" {
		return b
	}
	return "hydroflow-uploads"
}

// uploadImageGCS streams the uploaded image into the configured GCS
// bucket and returns its public URL.
func uploadImageGCS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ctx := r.Context()
	client, err := storage.NewClient(ctx)
	if err != nil {
		logrus.WithError(err).Error("gcs client init failed")
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	defer client.Close()

	bucket := gcsBucket()
	object := fmt.Sprintf("reports/%s-%s", time.Now().Format("20060102-150405"), filepath.Base(header.Filename))

	wc := client.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = header.Header.Get("Content-Type")
	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		logrus.WithError(err).Error("gcs upload failed")
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	if err := wc.Close(); err != nil {
		logrus.WithError(err).Error("gcs upload failed")
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url":      fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object),
		"filename": object,
	})
}
