package handlers

import (
	"net/http"
	"os"
)

// UploadReportImage routes to GCS or local disk depending on where the
// service is running. Cloud Run sets K_SERVICE; anything with explicit
// credentials also goes to GCS.
func UploadReportImage(w http.ResponseWriter, r *http.Request) {
	useGCS := os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != ""

	if useGCS {
		uploadImageGCS(w, r)
	} else {
		uploadImageLocal(w, r)
	}
}
