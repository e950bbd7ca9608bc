package handler

import (
	"encoding/json"
	"net/http"
)

// Version 回傳服務名稱與目前使用的儲存層，只接受 GET。
func Version(dataSource string) http.Handler {
	body, _ := json.Marshal(map[string]string{
		"service":     "trade-journal",
		"data_source": dataSource,
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
