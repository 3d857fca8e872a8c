package epub

import (
	"errors"
	"testing"
)

func TestCheckDRM_NoEncryptionFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"META-INF/container.xml": containerFor("content.opf"),
	})

	fontObfuscation, err := CheckDRM(root)
	if err != nil {
		t.Fatalf("CheckDRM returned error: %v", err)
	}
	if fontObfuscation {
		t.Error("fontObfuscation = true, want false")
	}
}

func TestCheckDRM_FontObfuscationOnly(t *testing.T) {
	root := writeTree(t, map[string]string{
		"META-INF/encryption.xml": `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding"/>
  </EncryptedData>
</encryption>`,
	})

	fontObfuscation, err := CheckDRM(root)
	if err != nil {
		t.Fatalf("CheckDRM returned error: %v", err)
	}
	if !fontObfuscation {
		t.Error("fontObfuscation = false, want true")
	}
}

func TestCheckDRM_AdobeAdept(t *testing.T) {
	root := writeTree(t, map[string]string{
		"META-INF/encryption.xml": `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes128-cbc"/>
    <KeyInfo xmlns="http://www.w3.org/2000/09/xmldsig#">
      <resource xmlns="http://ns.adobe.com/adept">urn:uuid:x</resource>
    </KeyInfo>
  </EncryptedData>
</encryption>`,
	})

	_, err := CheckDRM(root)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("CheckDRM error = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_AppleFairPlay(t *testing.T) {
	root := writeTree(t, map[string]string{
		"META-INF/sinf.xml": "<sinf/>",
	})

	_, err := CheckDRM(root)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("CheckDRM error = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_UnparsableEncryptionXML(t *testing.T) {
	root := writeTree(t, map[string]string{
		"META-INF/encryption.xml": "<encryption><broken",
	})

	_, err := CheckDRM(root)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("CheckDRM error = %v, want ErrDRMProtected (conservative)", err)
	}
}
