package pipeline

// FormStatus represents the state of one checklist entry.
type FormStatus string

const (
	FormStatusMissing       FormStatus = "missing"
	FormStatusUploaded      FormStatus = "uploaded"
	FormStatusVerified      FormStatus = "verified" // set manually, never by this layer
	FormStatusNotApplicable FormStatus = "notApplicable"
)

// BankFormKind identifies one of the required bank forms on a case.
type BankFormKind string

const (
	BankFormKFS              BankFormKind = "kfs"
	BankFormApplication      BankFormKind = "applicationForm"
	BankFormBankStatements   BankFormKind = "bankStatements"
	BankFormFinalOfferLetter BankFormKind = "finalOfferLetter"
	BankFormOther            BankFormKind = "other"
)

// DocumentKind identifies one of the required documents on a client.
type DocumentKind string

const (
	DocumentPassport          DocumentKind = "passport"
	DocumentEmiratesID        DocumentKind = "emiratesId"
	DocumentVisa              DocumentKind = "visa"
	DocumentSalaryCertificate DocumentKind = "salaryCertificate"
	DocumentBankStatements    DocumentKind = "bankStatements"
	DocumentCreditReport      DocumentKind = "creditReport"
	DocumentProofOfAddress    DocumentKind = "proofOfAddress"
	DocumentOther             DocumentKind = "other"
)

// RequiredBankFormKinds returns the fixed bank-form checklist for a case.
func RequiredBankFormKinds() []BankFormKind {
	return []BankFormKind{
		BankFormKFS,
		BankFormApplication,
		BankFormBankStatements,
		BankFormFinalOfferLetter,
		BankFormOther,
	}
}

// RequiredDocumentKinds returns the fixed document checklist for a client,
// identity kinds first, financial kinds after.
func RequiredDocumentKinds() []DocumentKind {
	return []DocumentKind{
		DocumentPassport,
		DocumentEmiratesID,
		DocumentVisa,
		DocumentProofOfAddress,
		DocumentSalaryCertificate,
		DocumentBankStatements,
		DocumentCreditReport,
		DocumentOther,
	}
}

// ParseBankFormKind validates a bank form kind received over the wire.
func ParseBankFormKind(raw string) (BankFormKind, error) {
	for _, k := range RequiredBankFormKinds() {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// ParseDocumentKind validates a document kind received over the wire.
func ParseDocumentKind(raw string) (DocumentKind, error) {
	for _, k := range RequiredDocumentKinds() {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// ClassifyBankFormBatch applies the duplicate-kind degradation rule to a
// batch of detected kinds uploaded together: the first file to claim a kind
// keeps it, every later file with the same kind degrades to the catch-all
// kind. The "other" kind itself never degrades, so a batch may carry several
// entries classified other.
func ClassifyBankFormBatch(detected []BankFormKind) []BankFormKind {
	seen := make(map[BankFormKind]bool, len(detected))
	out := make([]BankFormKind, len(detected))
	for i, kind := range detected {
		if kind != BankFormOther && seen[kind] {
			out[i] = BankFormOther
			continue
		}
		seen[kind] = true
		out[i] = kind
	}
	return out
}

// ChecklistEntry is one row of an entity's completion checklist.
type ChecklistEntry struct {
	Kind   string     `json:"kind"`
	Status FormStatus `json:"status"`
}

// MissingBankFormKinds reports the required case kinds that are still
// missing, given the kinds currently uploaded or verified. The catch-all
// kind never blocks completion. The result gates the advance affordance in
// the UI; it is advisory, not enforced.
func MissingBankFormKinds(present map[BankFormKind]FormStatus) []BankFormKind {
	var missing []BankFormKind
	for _, kind := range RequiredBankFormKinds() {
		if kind == BankFormOther {
			continue
		}
		switch present[kind] {
		case FormStatusUploaded, FormStatusVerified, FormStatusNotApplicable:
		default:
			missing = append(missing, kind)
		}
	}
	return missing
}

// MissingDocumentKinds reports the required client kinds still missing.
func MissingDocumentKinds(present map[DocumentKind]FormStatus) []DocumentKind {
	var missing []DocumentKind
	for _, kind := range RequiredDocumentKinds() {
		if kind == DocumentOther {
			continue
		}
		switch present[kind] {
		case FormStatusUploaded, FormStatusVerified, FormStatusNotApplicable:
		default:
			missing = append(missing, kind)
		}
	}
	return missing
}
