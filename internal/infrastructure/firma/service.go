// Servicio de firma digital del documento de factura. Construye un sobre XML
// certificante: el documento va embebido en Base64 y la firma (detached,
// sobre el digest SHA-256 de los bytes originales) se inyecta como
// ds:Signature con propiedades XAdES. Mismo documento + misma llave =
// mismo SignedInfo, sin re-hashear distinto por backend.

package firma

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Facturador-api/internal/application/billing"
)

// DigitalSignatureService implementa billing.DocumentSigner.
type DigitalSignatureService struct{}

// NewDigitalSignatureService crea el servicio.
func NewDigitalSignatureService() *DigitalSignatureService {
	return &DigitalSignatureService{}
}

var _ billing.DocumentSigner = (*DigitalSignatureService)(nil)

// Sign firma el documento y devuelve el sobre XML con la firma inyectada.
// Clasifica la llave por familia de algoritmo: RSA → rsa-sha256 (PKCS#1 v1.5),
// EC → ecdsa-sha256 (ASN.1). Cualquier otra llave es un error.
func (s *DigitalSignatureService) Sign(docBytes []byte, filename string, cert tls.Certificate) ([]byte, error) {
	if len(docBytes) == 0 {
		return nil, fmt.Errorf("firma: documento vacío")
	}
	if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
		return nil, fmt.Errorf("firma: certificado sin llave privada")
	}
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("firma: parsear certificado: %w", err)
	}

	// 1) Digest detached del documento original. Reference URI="#documento".
	docDigest := sha256.Sum256(docBytes)
	docDigestB64 := base64.StdEncoding.EncodeToString(docDigest[:])

	// 2) SignedInfo canónico (C14N) y firma según la familia de la llave.
	sigAlg, err := signatureAlgorithm(cert.PrivateKey)
	if err != nil {
		return nil, err
	}
	signedInfoXML := buildSignedInfo(sigAlg, docDigestB64)
	canonicalSignedInfo, err := canonicalizeXML([]byte(signedInfoXML))
	if err != nil {
		canonicalSignedInfo = []byte(signedInfoXML)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := signDigest(cert.PrivateKey, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("firma: firmar SignedInfo: %w", err)
	}
	signatureValueB64 := base64.StdEncoding.EncodeToString(signatureValue)

	// 3) KeyInfo + propiedades XAdES (SigningTime, SigningCertificate,
	// CommitmentTypeIndication certificante).
	certB64 := base64.StdEncoding.EncodeToString(x509Cert.Raw)
	signingTime := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	certDigestB64, issuerName, serialHex := CertDigestAndIssuerSerial(x509Cert)
	signatureXML := buildFullSignature(signedInfoXML, signatureValueB64, certB64, signingTime, certDigestB64, issuerName, serialHex)

	// 4) Sobre: documento embebido en Base64 + firma inyectada.
	return buildEnvelope(docBytes, filename, signatureXML)
}

// signatureAlgorithm clasifica la familia de la llave y devuelve el URI del
// método de firma.
func signatureAlgorithm(priv crypto.PrivateKey) (string, error) {
	switch priv.(type) {
	case *rsa.PrivateKey:
		return AlgRSASHA256, nil
	case *ecdsa.PrivateKey:
		return AlgECDSASHA256, nil
	default:
		return "", fmt.Errorf("firma: familia de llave no soportada %T", priv)
	}
}

// signDigest firma el digest SHA-256 con la llave privada.
func signDigest(priv crypto.PrivateKey, digest []byte) ([]byte, error) {
	switch key := priv.(type) {
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(nil, key, crypto.SHA256, digest)
	case *ecdsa.PrivateKey:
		return ecdsa.SignASN1(rand.Reader, key, digest)
	default:
		return nil, fmt.Errorf("firma: familia de llave no soportada %T", priv)
	}
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func buildSignedInfo(sigAlg, docDigestB64 string) string {
	uri := "#" + DocumentElementID
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + NamespaceDS + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"/>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + sigAlg + `"/>`)
	sb.WriteString(`<ds:Reference URI="` + uri + `">`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

func buildFullSignature(signedInfoXML, signatureValueB64, certB64, signingTime, certDigestB64, issuerName, serialHex string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" xmlns:xades="` + NamespaceXAdES + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<ds:SignatureValue>` + signatureValueB64 + `</ds:SignatureValue>`)
	sb.WriteString(`<ds:KeyInfo><ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data></ds:KeyInfo>`)
	sb.WriteString(`<ds:Object><xades:QualifyingProperties>`)
	sb.WriteString(`<xades:SignedProperties Id="signed-props">`)
	sb.WriteString(`<xades:SignedSignatureProperties>`)
	sb.WriteString(`<xades:SigningTime>` + signingTime + `</xades:SigningTime>`)
	sb.WriteString(`<xades:SigningCertificate><xades:Cert><xades:CertDigest><ds:DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<ds:DigestValue>` + certDigestB64 + `</ds:DigestValue></xades:CertDigest>`)
	sb.WriteString(`<xades:IssuerSerial><ds:X509IssuerName>` + escapeXML(issuerName) + `</ds:X509IssuerName><ds:X509SerialNumber>` + serialHex + `</ds:X509SerialNumber></xades:IssuerSerial></xades:Cert></xades:SigningCertificate>`)
	sb.WriteString(`</xades:SignedSignatureProperties>`)
	// Compromiso certificante: no se admiten cambios posteriores.
	sb.WriteString(`<xades:SignedDataObjectProperties><xades:CommitmentTypeIndication>`)
	sb.WriteString(`<xades:CommitmentTypeId><xades:Identifier>` + CommitmentNoFurtherChanges + `</xades:Identifier></xades:CommitmentTypeId>`)
	sb.WriteString(`</xades:CommitmentTypeIndication></xades:SignedDataObjectProperties>`)
	sb.WriteString(`</xades:SignedProperties></xades:QualifyingProperties></ds:Object>`)
	sb.WriteString(`</ds:Signature>`)
	return sb.String()
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// buildEnvelope arma el sobre <fd:DocumentoFirmado> con el documento en
// Base64 y la firma como hijo del sobre.
func buildEnvelope(docBytes []byte, filename, signatureXML string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("fd:DocumentoFirmado")
	root.CreateAttr("xmlns:fd", NamespaceFD)

	docElem := root.CreateElement("fd:Documento")
	docElem.CreateAttr("Id", DocumentElementID)
	docElem.CreateAttr("Filename", filename)
	docElem.CreateAttr("MimeType", "application/pdf")
	docElem.CreateAttr("Encoding", "base64")
	docElem.SetText(base64.StdEncoding.EncodeToString(docBytes))

	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, fmt.Errorf("firma: parsear Signature: %w", err)
	}
	sigRoot := sigDoc.Root()
	if sigRoot == nil {
		return nil, fmt.Errorf("firma: Signature sin raíz")
	}
	root.AddChild(sigRoot)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("firma: serializar sobre: %w", err)
	}
	return out, nil
}
