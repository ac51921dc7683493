// Package main provides localization for the retime CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Encode synthetic video while preserving frame timing across encoder reordering": "エンコーダの並べ替えを越えてフレームタイミングを保持しながら合成動画をエンコード",

		// Encode command
		"Encode a synthetic test stream to an MP4 file": "合成テストストリームをMP4ファイルにエンコード",

		// Flags
		"YAML configuration file":                                   "YAML設定ファイル",
		"Output MP4 file path":                                      "出力MP4ファイルパス",
		"Video width in pixels":                                     "動画の幅（ピクセル）",
		"Video height in pixels":                                    "動画の高さ（ピクセル）",
		"Number of frames to generate":                              "生成するフレーム数",
		"Frame rate numerator":                                      "フレームレートの分子",
		"Frame rate denominator":                                    "フレームレートの分母",
		"Constant quality (0-63, lower is better)":                  "固定品質（0-63、低いほど高品質）",
		"Average bitrate in bits/sec (0 = constant quality)":        "平均ビットレート（bits/sec、0 = 固定品質）",
		"Codec (vp8, vp9, null)":                                    "コーデック（vp8, vp9, null）",
		"Encoder preset":                                            "エンコーダプリセット",
		"Encoder profile":                                           "エンコーダプロファイル",
		"Run an analysis pass before encoding":                      "エンコード前に解析パスを実行",
		"Pass log file for two-pass encoding":                       "2パスエンコードのパスログファイル",
		"Insert a chapter every N frames (0 = none)":                "Nフレームごとにチャプターを挿入（0 = なし）",
		"Override the encoder reorder delay (-1 = backend decides)": "エンコーダの並べ替え遅延を上書き（-1 = バックエンドが決定）",
		"Path to ffmpeg executable":                                 "ffmpeg実行ファイルのパス",
		"Log level (debug, info, warn, error)":                      "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                   "全てのログ出力を抑制",

		// Runtime messages
		"Interrupted, shutting down...":                 "中断されました。シャットダウン中...",
		"Encoding %d frames at %dx%d with %s...":        "%d フレームを %dx%d で %s によりエンコード中...",
		"Done: %d packets, %d chapters, %d bytes to %s": "完了: %d パケット、%d チャプター、%d バイトを %s に出力",

		// Summary output flag
		"Output execution summary to file (Markdown format)": "実行サマリーをファイルに出力（Markdown形式）",
		"Summary saved to %s":                                "サマリーを %s に保存しました",
		"Failed to write summary: %s":                        "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Encode Summary": "エンコードサマリー",
		"Generated":      "生成日時",
		"Stream":         "ストリーム",
		"Settings":       "設定",
		"Results":        "実行結果",
		"Output":         "出力",
		"Item":           "項目",
		"Value":          "値",

		// Stream section
		"Codec":      "コーデック",
		"Resolution": "解像度",
		"Frame Rate": "フレームレート",

		// Settings section
		"Rate Control":      "レート制御",
		"Quality":           "品質",
		"Preset":            "プリセット",
		"Keyframe Interval": "キーフレーム間隔",
		"Passes":            "パス数",
		"Single pass":       "1パス",
		"Two passes":        "2パス",
		"Default":           "デフォルト",

		// Results section
		"Frames In":      "入力フレーム数",
		"Packets Out":    "出力パケット数",
		"Frames Dropped": "破棄フレーム数",
		"Reorder Delay":  "リオーダ遅延",
		"Chapters":       "チャプター数",

		// Output section
		"File":      "ファイル",
		"File Size": "ファイルサイズ",
	})
}
