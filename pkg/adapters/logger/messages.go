package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Command level messages
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Summary written to %s":         "サマリーを %s に書き込みました",
		"Failed to write summary: %s":   "サマリーの書き込みに失敗しました: %s",
		"Debug output enabled: %s":      "デバッグ出力が有効です: %s",
		"Using %s video writer":         "%s 動画ライターを使用します",

		// Orchestrator
		"Converting %s (%s, %d messages)":    "%s を変換中 (%s, %d メッセージ)",
		"Opened %s at %dx%d, %g fps":         "%s を %dx%d, %g fps で開きました",
		"Wrote %d frames to %s":              "%d フレームを %s に書き込みました",
		"Skipping record %d: %v":             "レコード %d をスキップします: %v",
		"Skipping frame %d: %v":              "フレーム %d をスキップします: %v",
		"Skipping unreadable record %d: %v":  "読み込めないレコード %d をスキップします: %v",
		"Conversion stopped after %d frames: %v": "%d フレームで変換を中止しました: %v",
		"Failed to open bag: %v":             "bag を開けませんでした: %v",
		"Failed to close bag: %v":            "bag を閉じられませんでした: %v",
		"Failed to read record %d: %v":       "レコード %d を読み込めませんでした: %v",
		"Failed to open video writer: %v":    "動画ライターを開けませんでした: %v",
		"Failed to finalize video: %v":       "動画を確定できませんでした: %v",
		"Failed to save debug output: %v":    "デバッグ出力を保存できませんでした: %v",

		// Bag reader
		"Opened bag %s with %d topics":                  "bag %s を開きました (%d トピック)",
		"%s not found in %s, scanning %d storage files": "%s が %s にありません。%d 個のストレージファイルを走査します",
		"Decompressed %s":                               "%s を展開しました",

		// Stages
		"Decoded %dx%d %s frame":  "%dx%d の %s フレームをデコードしました",
		"Annotated frame %d: %s": "フレーム %d に注記しました: %s",

		// Video writers
		"ffmpeg not found, falling back to the native MP4 writer": "ffmpeg が見つからないため、ネイティブ MP4 ライターにフォールバックします",
		"Started %s for %dx%d at %g fps":                          "%s を %dx%d, %g fps で起動しました",
		"Writing %dx%d JPEG samples to %s":                        "%dx%d の JPEG サンプルを %s に書き込み中",
		"Wrote %d frames in %d fragments":                         "%d フレームを %d フラグメントで書き込みました",
	})
}
