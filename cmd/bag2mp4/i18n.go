// Package main provides localization for the bag2mp4 CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定",
		"Video":         "動画",
		"Output":        "出力",
		"Debug":         "デバッグ",
		"Logging":       "ログ",

		// Root command
		"Convert an image topic of a ROS 2 bag into an MP4 video": "ROS 2 bag の画像トピックを MP4 動画に変換",

		// Subcommands
		"List the topics of a bag": "bag のトピック一覧を表示",
		"Show version information": "バージョン情報を表示",
		"bag2mp4 version %s":       "bag2mp4 バージョン %s",

		// Flags
		"YAML configuration file":                      "YAML 設定ファイル",
		"Video writer backend (auto, ffmpeg, native)":  "動画ライターのバックエンド（auto, ffmpeg, native）",
		"Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg 実行ファイルのパス（未指定時は FFMPEG_PATH 環境変数、次に PATH）",
		"JPEG quality of the native backend (1-100)":           "ネイティブバックエンドの JPEG 品質（1-100）",
		"Draw the frame number and header stamp on each frame": "各フレームにフレーム番号とヘッダー時刻を描画",
		"Output conversion summary to file (Markdown format)":  "変換サマリーをファイルに出力（Markdown形式）",
		"Enable debug output":                                  "デバッグ出力を有効化",
		"Directory for debug output":                           "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error)":                 "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                              "全てのログ出力を抑制",

		// Results
		"Video saved to %s":                         "動画を %s に保存しました",
		"Topic '%s' not found in the bag file.":     "トピック '%s' が bag ファイルに見つかりません。",
		"No frames written; video was not created.": "フレームが書き込まれなかったため、動画は作成されませんでした。",

		// Error messages
		"Three arguments are required: <bag_path> <image_topic> <output_video>": "引数が3つ必要です: <bag_path> <image_topic> <output_video>",
		"A bag path argument is required":                                       "bag パス引数が必要です",

		// Summary content
		"Conversion Summary": "変換サマリー",
		"Source":             "入力",
		"Records":            "レコード",
		"Recording Time":     "記録時刻",
		"Topics":             "トピック一覧",
		"Item":               "項目",
		"Value":              "値",
		"Bag":                "bag",
		"Topic":              "トピック",
		"Type":               "型",
		"Messages":           "メッセージ数",
		"Message Type":       "メッセージ型",
		"Records Read":       "読み込みレコード数",
		"Records on Topic":   "対象トピックのレコード数",
		"Frames Written":     "書き込みフレーム数",
		"Decode Failures":    "デコード失敗数",
		"Size Mismatches":    "サイズ不一致数",
		"First Frame":        "最初のフレーム",
		"Last Frame":         "最後のフレーム",
		"Span":               "期間",
		"Codec":              "コーデック",
		"Backend":            "バックエンド",
		"fallback":           "フォールバック",
		"Frame Size":         "フレームサイズ",
		"Frame Rate":         "フレームレート",
		"Frames":             "フレーム数",
		"Duration":           "長さ",
		"File Size":          "ファイルサイズ",
		"Generated by":       "生成:",
		"N/A":                "なし",
	})
}
