package ticket

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
)

// historyPageSize is the largest page the discord API returns per request.
const historyPageSize = 100

// History retrieves the channel's full message history, oldest first.
// Pages are fetched newest-to-oldest and reversed at the end.
func (s *Service) History(channelID string) ([]*discordgo.Message, error) {
	var history []*discordgo.Message

	beforeID := ""
	for {
		page, err := s.client.ChannelMessages(channelID, historyPageSize, beforeID, "", "")
		if err != nil {
			return nil, platformErr("fetch_message_history", channelID, err)
		}
		if len(page) == 0 {
			break
		}

		history = append(history, page...)
		beforeID = page[len(page)-1].ID

		if len(page) < historyPageSize {
			break
		}
	}

	// Reverse into chronological order.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// RenderTranscript renders messages as a plain-text transcript, one line per
// message in chronological order:
//
//	timestamp | author (authorId): content [Attachments: url, ...]
func RenderTranscript(history []*discordgo.Message) string {
	b := new(strings.Builder)
	for _, msg := range history {
		b.WriteString(renderTranscriptLine(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func renderTranscriptLine(msg *discordgo.Message) string {
	authorName, authorID := "unknown", "unknown"
	if msg.Author != nil {
		authorName = msg.Author.Username
		authorID = msg.Author.ID
	}

	content := msg.Content
	if len(msg.Attachments) > 0 {
		urls := make([]string, 0, len(msg.Attachments))
		for _, a := range msg.Attachments {
			urls = append(urls, a.URL)
		}
		content += fmt.Sprintf(" [Attachments: %s]", strings.Join(urls, ", "))
	}

	ts := msg.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")
	return fmt.Sprintf("%s | %s (%s): %s", ts, authorName, authorID, content)
}
