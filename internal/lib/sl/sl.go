// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — упростить формирование структурированных полей лога,
// например, для передачи информации об ошибках.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
// Удобно использовать в логировании для единообразного вывода ошибок.
//
// Пример:
//
//	log.Error("failed to publish note", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Note возвращает slog.Attr с идентификатором конспекта —
// самый частый атрибут в логах ядра.
func Note(id string) slog.Attr {
	return slog.Attr{
		Key:   "note_id",
		Value: slog.StringValue(id),
	}
}
