package pkg

// Resolver 从不透明凭证中解析调用者 ID。
// 聊天与社区逻辑只依赖这个接口，替换真实校验器时无需改动它们。
type Resolver interface {
	ResolveCaller(credential string) (string, bool)
}

// PassthroughResolver 开发占位：凭证本身是合法 ID 就直接当作调用者，不做任何签名校验
type PassthroughResolver struct{}

func (PassthroughResolver) ResolveCaller(credential string) (string, bool) {
	if !IsValidID(credential) {
		return "", false
	}
	return credential, true
}

// JWTResolver 校验 HS256 签名的 access token
type JWTResolver struct {
	Secret []byte
}

func (r JWTResolver) ResolveCaller(credential string) (string, bool) {
	if credential == "" {
		return "", false
	}
	claims, err := ParseAccess(credential, r.Secret)
	if err != nil {
		return "", false
	}
	if !IsValidID(claims.UserID) {
		return "", false
	}
	return claims.UserID, true
}
