package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// errFmtHandler は cockroachdb/errors のスタックトレースをログ属性として展開する
// slog ハンドラ。クリーニングや学習、緩和処理の失敗をログストリームだけで
// 追跡できるようにする。
type errFmtHandler struct {
	next slog.Handler
}

// WrapByErrFmtHandler wraps a slog handler so that any record carrying an
// ErrAttr gains a stacktrace attribute extracted from the error value.
func WrapByErrFmtHandler(next slog.Handler) slog.Handler {
	return &errFmtHandler{next: next}
}

func (h *errFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *errFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacktrace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			stacktrace = extractStacktrace(err)
		}
		return false
	})
	if stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
	}
	return h.next.Handle(ctx, r)
}

func (h *errFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errFmtHandler{next: h.next.WithAttrs(attrs)}
}

func (h *errFmtHandler) WithGroup(g string) slog.Handler {
	return &errFmtHandler{next: h.next.WithGroup(g)}
}

// extractStacktrace は pkg/errors のコンストラクタが付与したスタックトレースを
// 取り出す。スタックを持たないエラーでは空文字列を返す。
func extractStacktrace(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) == 0 {
		return ""
	}
	return details[0]
}
