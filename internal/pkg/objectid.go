package pkg

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// NewID 生成 24 位十六进制的 ObjectID 字符串，所有实体共用该格式
func NewID() string {
	return bson.NewObjectID().Hex()
}

// IsValidID 纯语法校验，与存储状态无关
func IsValidID(s string) bool {
	if len(s) != 24 {
		return false
	}
	_, err := bson.ObjectIDFromHex(s)
	return err == nil
}
