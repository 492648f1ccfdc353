package telegram

import (
	"sync"

	"gaianet/api/internal/pipeline"
)

// Per-chat history samples pending for the next photo. One observation = one
// image, so there is no photo batching here.
var chatHistory sync.Map // chatID -> []pipeline.Sample

func setHistory(chatID int64, samples []pipeline.Sample) { chatHistory.Store(chatID, samples) }

func takeHistory(chatID int64) []pipeline.Sample {
	v, ok := chatHistory.LoadAndDelete(chatID)
	if !ok {
		return nil
	}
	return v.([]pipeline.Sample)
}

func clearHistory(chatID int64) { chatHistory.Delete(chatID) }
