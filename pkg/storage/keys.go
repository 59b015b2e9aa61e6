package storage

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectKey builds a collision-free storage key for an uploaded file,
// grouping objects by project: "{projectID}/{uuid}{ext}".
func ObjectKey(projectID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return projectID + "/" + uuid.NewString() + ext
}
