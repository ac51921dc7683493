package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session level messages (info)
		"Opening %s encoder: %dx%d at %d/%d fps": "%s エンコーダを開いています: %dx%d, %d/%d fps",
		"Flushed: %d frames in, %d packets out":  "フラッシュ完了: 入力 %d フレーム, 出力 %d パケット",

		// Session internals (debug)
		"Reorder delay is %d frames, ring capacity %d":      "リオーダ遅延は %d フレーム, リング容量 %d",
		"Chapter requested at frame %d":                     "フレーム %d でチャプターを要求",
		"Chapter from frame %d lands on keyframe packet %d": "フレーム %d のチャプターをキーフレームパケット %d に設定",
		"Passing backend option %s=%s":                      "バックエンドオプション %s=%s を渡します",

		// Orchestration
		"Running analysis pass":                                "解析パスを実行中",
		"Analysis pass done: %d frames":                        "解析パス完了: %d フレーム",
		"Running encode pass":                                  "エンコードパスを実行中",
		"Encoded %d frames into %d packets, reorder delay %d":  "%d フレームを %d パケットにエンコード, リオーダ遅延 %d",
		"Output written: %s (%d bytes)":                        "出力を書き込みました: %s (%d バイト)",

		// Warnings
		"Dropped %d frames rejected by the encoder":                "エンコーダに拒否された %d フレームを破棄しました",
		"Dropped %d chapter requests with no keyframe to attach to": "キーフレームに割り当てられなかった %d 件のチャプター要求を破棄しました",

		// Errors
		"Backend rejected frame %d: %s": "バックエンドがフレーム %d を拒否しました: %s",
		"Backend receive failed: %s":    "バックエンドからの受信に失敗しました: %s",
		"Failed to write pass log: %s":  "パスログの書き込みに失敗しました: %s",
		"Failed to write output: %s":    "出力の書き込みに失敗しました: %s",
		"Analysis pass failed: %s":      "解析パスに失敗しました: %s",
		"Encode pass failed: %s":        "エンコードパスに失敗しました: %s",
	})
}
