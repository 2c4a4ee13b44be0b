// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package sasl

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"strings"
	"testing"

	"golang.org/x/crypto/pbkdf2"
)

// serverSideSCRAM drives a minimal SCRAM-SHA-1 server against the client
// mechanism to exercise the full handshake, including the final server
// signature the client must verify.
func serverSideSCRAM(t *testing.T, salt []byte, iterations int, password, serverNonceSuffix string) (clientFirst, serverFirst, clientFinal, serverFinal []byte) {
	t.Helper()
	m := NewScramSHA1("user", password)

	var err error
	clientFirst, err = m.Response(nil)
	if err != nil {
		t.Fatal(err)
	}
	clientNonce := parseScramParams(string(clientFirst))["r"]
	serverNonce := clientNonce + serverNonceSuffix

	serverFirst = []byte("r=" + serverNonce + ",s=" + base64.StdEncoding.EncodeToString(salt) + ",i=" + itoa(iterations))
	clientFinal, err = m.Response(serverFirst)
	if err != nil {
		t.Fatal(err)
	}

	saltedPassword := pbkdf2.Key([]byte(password), salt, iterations, sha1.Size, sha1.New)
	serverKey := hmacSHA1(saltedPassword, "Server Key")
	clientFirstBare := clientFirst[len("n,,"):]
	authMessage := string(clientFirstBare) + "," + string(serverFirst) + "," + "c=biws,r=" + serverNonce
	sig := hmacSHA1(serverKey, authMessage)
	serverFinal = []byte("v=" + base64.StdEncoding.EncodeToString(sig))

	if _, err := m.Response(serverFinal); err != nil {
		t.Fatal(err)
	}
	if !m.IsCompleted() {
		t.Error("expected SCRAM-SHA-1 to be completed after a verified server signature")
	}
	return
}

func itoa(i int) string {
	// Avoid pulling in strconv just for the test harness' synthetic
	// iteration count; i is always small and non-negative here.
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func TestScramSHA1Handshake(t *testing.T) {
	salt := []byte("fyko+d2lbbFgONRv9qkxdawL")
	serverSideSCRAM(t, salt, 4096, "pencil", "3rfcNHYJY1ZVvWVs7j")
}

func TestScramSHA1RejectsBadServerSignature(t *testing.T) {
	m := NewScramSHA1("user", "pencil")
	clientFirst, err := m.Response(nil)
	if err != nil {
		t.Fatal(err)
	}
	clientNonce := parseScramParams(string(clientFirst))["r"]
	salt := []byte("fyko+d2lbbFgONRv9qkxdawL")
	serverFirst := []byte("r=" + clientNonce + "serverpart,s=" + base64.StdEncoding.EncodeToString(salt) + ",i=4096")
	if _, err := m.Response(serverFirst); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Response([]byte("v=" + base64.StdEncoding.EncodeToString([]byte("not-the-signature")))); err == nil {
		t.Error("expected a forged server signature to be rejected")
	}
}

// TestScramSHA1ProofReconstructsClientKey checks the self-check idempotence
// law: ClientProof XOR the ClientSignature derived from StoredKey
// reconstructs ClientKey.
func TestScramSHA1ProofReconstructsClientKey(t *testing.T) {
	password := "pencil"
	salt := []byte("fyko+d2lbbFgONRv9qkxdawL")
	iterations := 4096

	m := NewScramSHA1("user", password)
	clientFirst, err := m.Response(nil)
	if err != nil {
		t.Fatal(err)
	}
	clientNonce := parseScramParams(string(clientFirst))["r"]
	serverNonce := clientNonce + "serverpart"
	serverFirst := []byte("r=" + serverNonce + ",s=" + base64.StdEncoding.EncodeToString(salt) + ",i=4096")
	clientFinal, err := m.Response(serverFirst)
	if err != nil {
		t.Fatal(err)
	}
	proof64 := parseScramParams(string(clientFinal))["p"]
	proof, err := base64.StdEncoding.DecodeString(proof64)
	if err != nil {
		t.Fatal(err)
	}

	saltedPassword := pbkdf2.Key([]byte(password), salt, iterations, sha1.Size, sha1.New)
	clientKey := hmacSHA1(saltedPassword, "Client Key")
	storedKey := sha1.Sum(clientKey)

	clientFirstBare := clientFirst[len("n,,"):]
	authMessage := string(clientFirstBare) + "," + string(serverFirst) + ",c=biws,r=" + serverNonce
	clientSignature := hmacSHA1(storedKey[:], authMessage)

	reconstructed := make([]byte, len(clientKey))
	for i := range proof {
		reconstructed[i] = proof[i] ^ clientSignature[i]
	}
	if !hmac.Equal(reconstructed, clientKey) {
		t.Error("ClientProof XOR ClientSignature did not reconstruct ClientKey")
	}
}

func TestScramSHA1RejectsShortServerNonce(t *testing.T) {
	m := NewScramSHA1("user", "pencil")
	if _, err := m.Response(nil); err != nil {
		t.Fatal(err)
	}
	badFirst := []byte("r=totally-different-nonce,s=" + base64.StdEncoding.EncodeToString([]byte("salt")) + ",i=4096")
	if _, err := m.Response(badFirst); err == nil {
		t.Error("expected a server nonce not extending the client nonce to be rejected")
	}
}

func TestScramEscape(t *testing.T) {
	if got := scramEscape("a=b,c"); got != "a=3Db=2Cc" {
		t.Errorf("got %q, want a=3Db=2Cc", got)
	}
	if strings.Contains(scramEscape("plain"), "=3D") {
		t.Error("escape should not touch strings without reserved characters")
	}
}
