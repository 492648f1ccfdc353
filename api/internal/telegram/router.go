// Package telegram is the interactive surface of the pipeline: send a
// wildlife photo, get the staged analysis back; send a CSV document to supply
// population history for the next photo.
package telegram

import (
	"encoding/json"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gaianet/api/internal/pipeline"
	"gaianet/api/internal/wildlife"
)

type Router struct {
	Bot   *tgbotapi.BotAPI
	Pipe  *pipeline.Pipeline
	Store *pipeline.Store
	Mode  wildlife.Mode
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.handleCommand(*msg)
	case len(msg.Photo) > 0:
		r.acceptPhoto(*msg)
	case msg.Document != nil:
		r.acceptHistoryDocument(*msg)
	default:
		r.send(cid, "Send a wildlife photo (JPEG or PNG) to run the analysis.\nCommands: /health, /raw, /reset")
	}
}

func (r *Router) handleCommand(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start":
		r.send(cid, "Send a wildlife photo — I will detect the species, forecast its population, model the ecosystem and suggest conservation actions.\nOptionally send a CSV document (date,count) first to use your own history.\nCommands: /health, /raw, /reset")
	case "health":
		switch r.Mode {
		case wildlife.ModeRemote:
			r.send(cid, "OK: remote model configured")
		case wildlife.ModeLocal:
			r.send(cid, "Degraded: no API key, detection only (local classifier)")
		default:
			r.send(cid, "Unavailable: no inference capability configured")
		}
	case "raw":
		run, ok := r.Store.Get(session(cid))
		if !ok {
			r.send(cid, "No analysis yet. Send a photo first.")
			return
		}
		b, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			r.SendError(cid, err)
			return
		}
		r.sendChunked(cid, string(b))
	case "reset":
		r.Store.Delete(session(cid))
		clearHistory(cid)
		r.send(cid, "Session cleared.")
	default:
		r.send(cid, "Unknown command")
	}
}

func session(chatID int64) string { return fmt.Sprintf("tg:%d", chatID) }

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("telegram send: %v", err)
	}
}

func (r *Router) SendError(chatID int64, err error) {
	r.send(chatID, "Something went wrong: "+err.Error())
}

// Telegram caps messages at 4096 chars; raw model dumps can exceed that.
func (r *Router) sendChunked(chatID int64, text string) {
	const limit = 3900
	for len(text) > limit {
		r.send(chatID, text[:limit])
		text = text[limit:]
	}
	if text != "" {
		r.send(chatID, text)
	}
}
