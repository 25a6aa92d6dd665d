package usecase

import "math/rand"

// 読み上げやすい大文字＋数字だけを使う
const pickupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const pickupCodeLength = 5

// 店頭受け取り用の短いコードを作る（例: D4F8Z）。
// 一意性はDBのuniqueインデックス＋呼び出し側の再生成ループで担保する
func GeneratePickupCode(length int) string {
	if length <= 0 {
		length = pickupCodeLength
	}

	code := make([]byte, length)
	for i := range code {
		code[i] = pickupCodeAlphabet[rand.Intn(len(pickupCodeAlphabet))]
	}
	return string(code)
}
