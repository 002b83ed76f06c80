// Constantes del sobre de firma (XMLDSig / XAdES).

package firma

// Namespaces y algoritmos XMLDSig / XAdES.
const (
	NamespaceFD    = "urn:facturador:documento-firmado:1.0"
	NamespaceDS    = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES = "http://uri.etsi.org/01903/v1.3.2#"
	AlgC14N        = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA256   = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgECDSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#ecdsa-sha256"
	AlgSHA256      = "http://www.w3.org/2000/09/xmldsig#sha256"
)

// Compromiso de la firma: certificante, el documento no admite cambios
// posteriores (cualquier modificación invalida la firma).
const CommitmentNoFurtherChanges = "http://uri.etsi.org/01903/v1.2.2#ProofOfApproval"

// ID del elemento <fd:Documento> al que apunta la Reference de la firma.
const DocumentElementID = "documento"
