package models

import "time"

// DownloadRecord запись об успешно выданном скачивании видео.
// Путь, имя файла и заголовок копируются на момент выдачи,
// чтобы история переживала изменение или удаление видео.
type DownloadRecord struct {
	ID               string    `json:"id"`
	UserUID          string    `json:"user_uid"`
	VideoID          string    `json:"video_id"`
	DownloadedAt     time.Time `json:"downloaded_at"`
	IsPremiumUser    bool      `json:"is_premium_user"`
	OriginalFilepath string    `json:"original_filepath"`
	OriginalFilename string    `json:"original_filename"`
	VideoTitle       string    `json:"video_title"`
	Deleted          bool      `json:"-"`
}

// Allowance результат проверки дневного лимита скачиваний.
type Allowance struct {
	CanDownload    bool `json:"can_download"`
	Unlimited      bool `json:"unlimited"`
	IsPremium      bool `json:"is_premium"`
	Remaining      int  `json:"remaining"`
	DownloadsToday int  `json:"downloads_today"`
	DailyLimit     int  `json:"daily_limit"`
}

// DummyDownloadRequest используется для приёма запроса на скачивание видео.
type DummyDownloadRequest struct {
	VideoID string `json:"video_id" validate:"required,uuid"`
}

// Video минимальные данные видеофайла, читаемые при выдаче скачивания.
type Video struct {
	ID         string
	VideoTitle string
	Filename   string
	Filepath   string
	CreatedAt  time.Time
}
