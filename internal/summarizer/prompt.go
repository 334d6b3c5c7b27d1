package summarizer

import (
	"strings"

	"pdfchat/internal/model"
)

const chatTemplate = `You are a helpful assistant that answers questions about PDF documents.

CONTEXT:
{{.context}}

CHAT HISTORY:
{{.history}}
USER QUERY:
{{.query}}

Please provide a helpful, accurate, and concise response based on the context provided.`

func formatHistory(history []model.Message) string {
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}
