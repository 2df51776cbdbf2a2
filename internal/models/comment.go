package models

import "time"

// Типы реакций на комментарий.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Comment комментарий пользователя к видео. Счётчики likes/dislikes растут
// только через реакции. Флаг Deleted терминален: однажды удалённый
// комментарий (модерацией или администратором) не восстанавливается.
type Comment struct {
	ID             string     `json:"id"`
	UserUID        string     `json:"user_uid"`
	VideoID        string     `json:"video_id"`
	CommentBody    string     `json:"comment_body"`
	UserCommented  string     `json:"user_commented,omitempty"`
	City           string     `json:"city,omitempty"`
	Likes          int        `json:"likes"`
	Dislikes       int        `json:"dislikes"`
	Deleted        bool       `json:"deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CommentedOn    time.Time  `json:"commented_on"`
	TranslatedText string     `json:"translated_text,omitempty"`
	TranslatedTo   string     `json:"translated_to,omitempty"`
}

// ReactionResult итог применения реакции. AutoDeleted выставляется ровно
// одному вызову — тому, чьё условное обновление перевело комментарий
// в удалённое состояние.
type ReactionResult struct {
	Comment     *Comment `json:"comment"`
	AutoDeleted bool     `json:"auto_deleted"`
}

// DummyComment используется для приёма нового комментария из JSON-запроса.
type DummyComment struct {
	VideoID       string `json:"video_id" validate:"required,uuid"`
	CommentBody   string `json:"comment_body" validate:"required"`
	UserCommented string `json:"user_commented" validate:"omitempty"`
	City          string `json:"city" validate:"omitempty"`
}

// DummyReaction используется для приёма реакции на комментарий.
type DummyReaction struct {
	Type string `json:"type" validate:"required,oneof=like dislike"`
}

// DummyEdit используется для приёма исправленного текста комментария.
type DummyEdit struct {
	CommentBody string `json:"comment_body" validate:"required"`
}

// DummyTranslate используется для приёма запроса на перевод комментария.
type DummyTranslate struct {
	To string `json:"to" validate:"required"`
}
