package dashboard

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// MsgNothingToExport is returned when the export would be empty.
const MsgNothingToExport = "No feedbacks to export"

const csvHeader = "Name,Email,Rating,Message,Created At\n"

// ExportFilename names an export taken at now.
func ExportFilename(now time.Time) string {
	return "feedbacks_" + now.Format("2006-01-02") + ".csv"
}

// WriteCSV writes feedbacks in the given order under a plain header row.
// Every record field is quoted, which encoding/csv only does when a field needs it.
func WriteCSV(w io.Writer, feedbacks []*entities.Feedback) error {
	if len(feedbacks) == 0 {
		return apperrors.NewValidationError(MsgNothingToExport)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(csvHeader)
	for _, feedback := range feedbacks {
		writeCSVRow(bw,
			feedback.Name,
			feedback.Email,
			strconv.Itoa(feedback.Rating),
			feedback.Message,
			feedback.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return bw.Flush()
}

// writeCSVRow writes one line; errors surface from Flush.
func writeCSVRow(w *bufio.Writer, fields ...string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}
