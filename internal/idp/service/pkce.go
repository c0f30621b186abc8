package service

import (
	"strings"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/domain"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/cryptox"
)

// pkceRequest validates the code_challenge parameters of an authorize
// request. The method defaults to plain; clients that mandate PKCE only
// accept S256.
func pkceRequest(client domain.Client, responseType, challenge, method string) (string, domain.CodeChallengeMethod, *OIDCError) {
	if challenge == "" {
		if client.PKCECodeChallenge {
			return "", "", InvalidRequest(`Parameter "code_challenge_method" MUST be provided`)
		}
		return "", "", nil
	}
	if method == "" {
		method = string(domain.CodeChallengePlain)
	}

	allowed := []domain.CodeChallengeMethod{domain.CodeChallengePlain, domain.CodeChallengeS256}
	if client.PKCECodeChallenge {
		allowed = allowed[1:]
	}
	for _, m := range allowed {
		if string(m) == method {
			return challenge, m, nil
		}
	}
	if responseType != "code" {
		return "", "", nil
	}
	quoted := make([]string, len(allowed))
	for i, m := range allowed {
		quoted[i] = `"` + string(m) + `"`
	}
	return "", "", InvalidRequest(`Parameter "code_challenge_method" must be %s`, strings.Join(quoted, " or "))
}

// VerifyCodeVerifier checks the verifier presented at the token endpoint
// against the challenge stored on code.
func VerifyCodeVerifier(code domain.Code, verifier string) *OIDCError {
	if code.CodeChallenge == "" {
		return nil
	}
	if verifier == "" {
		return MissingParameter("code_verifier")
	}

	var computed string
	switch code.CodeChallengeMethod {
	case domain.CodeChallengePlain:
		computed = verifier
	case domain.CodeChallengeS256:
		computed = cryptox.S256Challenge(verifier)
	default:
		return InvalidGrant("Unknown code_challenge_method %s", code.CodeChallengeMethod)
	}
	if !cryptox.ConstantTimeEqual(code.CodeChallenge, computed) {
		return InvalidGrant("The code_verifier does not match the code_challenge.")
	}
	return nil
}
