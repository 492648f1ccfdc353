package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gaianet/api/internal/pipeline"
	"gaianet/api/internal/util"
)

var httpc = &http.Client{Timeout: 60 * time.Second}

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1] // largest size

	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		r.SendError(cid, err)
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	imgBytes, err := download(url)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	jpg, err := util.ReencodeJPEG(imgBytes)
	if err != nil {
		r.send(cid, "I can only read JPEG or PNG images.")
		return
	}

	r.send(cid, "Got the photo, analyzing…")

	run := r.Pipe.Run(context.Background(), pipeline.Observation{
		Image:   jpg,
		History: takeHistory(cid),
	})
	r.Store.Put(session(cid), run)

	r.send(cid, summarizeRun(run))
}

// acceptHistoryDocument stores a date,count CSV for this chat's next photo.
func (r *Router) acceptHistoryDocument(msg tgbotapi.Message) {
	cid := msg.Chat.ID
	doc := msg.Document
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".csv") {
		r.send(cid, "History must be a .csv file with date and count columns.")
		return
	}
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: doc.FileID})
	if err != nil {
		r.SendError(cid, err)
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	body, err := download(url)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	samples, err := pipeline.ParseHistoryCSV(strings.NewReader(string(body)))
	if err != nil {
		r.SendError(cid, err)
		return
	}
	setHistory(cid, samples)
	r.send(cid, fmt.Sprintf("Stored %d history samples. They will be used for your next photo.", len(samples)))
}

func download(url string) ([]byte, error) {
	resp, err := httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}
