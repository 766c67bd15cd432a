// internal/utils/csv.go
package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CSVTimeLayout is the timestamp format used in every export.
const CSVTimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes header and rows to w and reports the first write error.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

// CSVAttachment sends body as a downloadable CSV file.
func CSVAttachment(c *gin.Context, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
