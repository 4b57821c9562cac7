package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBankFormBatch(t *testing.T) {
	t.Run("Duplicate Kind Degrades To Other", func(t *testing.T) {
		out := ClassifyBankFormBatch([]BankFormKind{BankFormKFS, BankFormKFS})
		assert.Equal(t, []BankFormKind{BankFormKFS, BankFormOther}, out)
	})

	t.Run("First Match Wins", func(t *testing.T) {
		out := ClassifyBankFormBatch([]BankFormKind{
			BankFormApplication,
			BankFormKFS,
			BankFormApplication,
			BankFormKFS,
		})
		assert.Equal(t, []BankFormKind{
			BankFormApplication,
			BankFormKFS,
			BankFormOther,
			BankFormOther,
		}, out)
	})

	t.Run("Other Never Degrades", func(t *testing.T) {
		out := ClassifyBankFormBatch([]BankFormKind{BankFormOther, BankFormOther, BankFormOther})
		assert.Equal(t, []BankFormKind{BankFormOther, BankFormOther, BankFormOther}, out)
	})

	t.Run("Distinct Kinds Untouched", func(t *testing.T) {
		in := []BankFormKind{BankFormKFS, BankFormApplication, BankFormFinalOfferLetter}
		assert.Equal(t, in, ClassifyBankFormBatch(in))
	})

	t.Run("Empty Batch", func(t *testing.T) {
		assert.Empty(t, ClassifyBankFormBatch(nil))
	})
}

func TestParseKinds(t *testing.T) {
	kind, err := ParseBankFormKind("kfs")
	require.NoError(t, err)
	assert.Equal(t, BankFormKFS, kind)

	_, err = ParseBankFormKind("salarySlip")
	assert.ErrorIs(t, err, ErrUnknownKind)

	doc, err := ParseDocumentKind("emiratesId")
	require.NoError(t, err)
	assert.Equal(t, DocumentEmiratesID, doc)

	_, err = ParseDocumentKind("kfs")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestMissingBankFormKinds(t *testing.T) {
	t.Run("All Missing Initially", func(t *testing.T) {
		missing := MissingBankFormKinds(map[BankFormKind]FormStatus{})
		// Everything except the catch-all kind.
		assert.Len(t, missing, len(RequiredBankFormKinds())-1)
		assert.NotContains(t, missing, BankFormOther)
	})

	t.Run("Uploaded And Verified Count As Present", func(t *testing.T) {
		missing := MissingBankFormKinds(map[BankFormKind]FormStatus{
			BankFormKFS:              FormStatusUploaded,
			BankFormApplication:      FormStatusVerified,
			BankFormBankStatements:   FormStatusUploaded,
			BankFormFinalOfferLetter: FormStatusMissing,
		})
		assert.Equal(t, []BankFormKind{BankFormFinalOfferLetter}, missing)
	})
}

func TestMissingDocumentKinds(t *testing.T) {
	present := map[DocumentKind]FormStatus{}
	for _, kind := range RequiredDocumentKinds() {
		present[kind] = FormStatusUploaded
	}
	assert.Empty(t, MissingDocumentKinds(present))

	// Deleting an upload resets the entry to missing.
	present[DocumentPassport] = FormStatusMissing
	assert.Equal(t, []DocumentKind{DocumentPassport}, MissingDocumentKinds(present))

	// notApplicable satisfies the checklist.
	present[DocumentPassport] = FormStatusNotApplicable
	assert.Empty(t, MissingDocumentKinds(present))
}
