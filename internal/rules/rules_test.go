package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClassify_CreditFacturaWinsOverLaterKeywords(t *testing.T) {
	for _, variant := range Variants() {
		tbl := DefaultTable(variant)
		want := tbl.Credit[0].Label
		for _, desc := range []string{
			"FACTURA 123",
			"FACTURA LINEA DE CREDITO",
			"FACTURA RECICLAJES ECOLOGICOS DE CHILE LIMITADA",
			"TRASPASO DE: FACTURA 99",
		} {
			assert.Equal(t, want, tbl.Classify(desc, dec("500")), "%s: %q", variant, desc)
		}
	}
}

func TestClassify_EmptyZeroIsUnclassified(t *testing.T) {
	for _, variant := range Variants() {
		assert.Equal(t, model.Unclassified, DefaultTable(variant).Classify("", decimal.Zero), variant)
	}
}

func TestClassify_ZeroUsesDebitBranch(t *testing.T) {
	tbl := DefaultTable(VariantComparativo)

	// FACTURA is only a credit keyword.
	assert.Equal(t, model.Unclassified, tbl.Classify("FACTURA 123", decimal.Zero))
	assert.Equal(t, LabelProveedores, tbl.Classify("PROVEEDORES XYZ", decimal.Zero))

	m := tbl.Explain("FACTURA 123", decimal.Zero)
	assert.Equal(t, BranchDebit, m.Branch)
	assert.False(t, m.Matched())
}

func TestClassify_Comparativo(t *testing.T) {
	tbl := DefaultTable(VariantComparativo)
	tests := []struct {
		desc string
		net  string
		want model.Classification
	}{
		{"DEPOSITO EN EFECTIVO", "100", LabelFacturasFlujoComp},
		{"TRASPASO DE: JUAN PEREZ", "100", LabelFacturasFlujoComp},
		{"ABONO LINEA DE CREDITO", "100", LabelLineaCredito},
		{"ABONO DESCONOCIDO", "100", model.Unclassified},
		{"PAGO: PROVEEDORES ACME", "-100", LabelProveedoresFijos},
		{"PROVISION: PROVEEDORES ACME", "-100", LabelProveedoresExistencias},
		{"NOMINA PROVEEDORES", "-100", LabelProveedores},
		{"PAGO SUELDOS JUNIO", "-100", LabelRemuneraciones},
		{"SERVIPAG AGUAS ANDINAS", "-100", LabelProveedores},
		{"HONORARIOS CONTADOR", "-100", LabelHonorarios},
		{"COLEGIO SAN JOSE", "-100", LabelEducacion},
		{"CONSTRUCTORA SEPCO", "-100", LabelFacturasNacional},
		{"INTERESES LINEA", "-100", LabelLineaCredito},
		{"GIRO EFECTIVO", "-100", LabelDepositoEfectivo},
		{"VIRTUALPOS", "-100", LabelTransbank},
		{"BRUSSELS SPA", "-100", LabelServiciosExternos},
		{"COMISION MANTENCION", "-100", LabelComisiones},
		{"PAGO EN SII F29", "-100", LabelImpuestos},
		{"PAGO DE CREDITOS M/N 0001", "-100", LabelCreditoBanco},
		{"PAGO AUTOMATICO TARJETA DE CREDITO", "-100", LabelTarjeta},
		{"INMOBILIARIA MONJITAS SA", "-100", LabelArriendoOficinaComp},
		{"PAGO INSTITUCIONES PREVISIONALES", "-100", LabelImposiciones},
		{"TRASPASO DE: RECICLAJES ECOLOGICOS DE CHILE LIMITADA", "-100", LabelFinanciamiento},
		{"CARGO VARIOS", "-100", model.Unclassified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tbl.Classify(tt.desc, dec(tt.net)), "Classify(%q, %s)", tt.desc, tt.net)
	}
}

func TestClassify_Detallado(t *testing.T) {
	tbl := DefaultTable(VariantDetallado)
	tests := []struct {
		desc string
		net  string
		want model.Classification
	}{
		{"FACTURA 123", "500", LabelFacturasFlujo},
		{"ABONO RECICLAJES ECOLOGICOS DE CHILE LIMITADA", "500", LabelFinanciamiento},
		{"TRASPASO DE: OTRA EMPRESA", "500", LabelFacturasFlujo},
		// No fixed/existences split in this variant.
		{"PAGO: PROVEEDORES ACME", "-100", LabelProveedores},
		{"HONORARIOS CONTADOR", "-100", LabelHonorariosPagar},
		{"MALSCH Y COMPANIA S.A.", "-100", LabelArriendoOficina},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tbl.Classify(tt.desc, dec(tt.net)), "Classify(%q, %s)", tt.desc, tt.net)
	}
}

func TestClassify_SubstringInheritsPartialWordMatches(t *testing.T) {
	tbl := DefaultTable(VariantComparativo)
	// AGUA matches inside PARAGUAS.
	assert.Equal(t, LabelProveedores, tbl.Classify("COMPRA PARAGUAS", dec("-10")))
}

func TestClassify_Deterministic(t *testing.T) {
	tbl := DefaultTable(VariantComparativo)
	desc := normalize.Normalize("Pago: Proveedores Ñuñoa")
	first := tbl.Classify(desc, dec("-1"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, tbl.Classify(desc, dec("-1")))
	}
}

func TestExplain(t *testing.T) {
	tbl := DefaultTable(VariantComparativo)
	m := tbl.Explain("PAGO SUELDOS JUNIO", dec("-100"))
	require.True(t, m.Matched())
	assert.Equal(t, BranchDebit, m.Branch)
	assert.Equal(t, 3, m.Index)
	assert.Equal(t, "SUELDOS", m.Keyword)
	assert.Equal(t, LabelRemuneraciones, m.Label)
}

func TestLabels_DistinctInOrder(t *testing.T) {
	labels := DefaultTable(VariantDetallado).Labels()
	require.NotEmpty(t, labels)
	assert.Equal(t, LabelFacturasFlujo, labels[0])

	seen := make(map[model.Classification]bool)
	for _, l := range labels {
		assert.False(t, seen[l], "duplicate label %s", l)
		seen[l] = true
	}
	assert.True(t, seen[LabelImposiciones])
}

func TestNormalized_KeywordsFolded(t *testing.T) {
	tbl := (&Table{Debit: []Rule{{Label: "X", Keywords: []string{" remuneración "}}}}).Normalized()
	assert.Equal(t, []string{"REMUNERACION"}, tbl.Debit[0].Keywords)
}

func TestValidate(t *testing.T) {
	tbl := &Table{
		Credit: []Rule{
			{Label: "", Keywords: []string{"A"}},
			{Label: "B"},
		},
		Debit: []Rule{
			{Label: model.Unclassified, Keywords: []string{"C"}},
			{Label: "D", Keywords: []string{"  ", "ok"}},
		},
	}
	errs := tbl.Validate()
	require.Len(t, errs, 4)
	assert.Equal(t, "credit rule 1: empty label", errs[0].Error())
	assert.Equal(t, "credit rule 2: no keywords", errs[1].Error())
	assert.Contains(t, errs[2].Error(), "reserved")
	assert.Contains(t, errs[3].Error(), "empty after normalization")
}

func TestDefaultTables_Valid(t *testing.T) {
	for _, variant := range Variants() {
		tbl := DefaultTable(variant)
		assert.Empty(t, tbl.Validate(), variant)
		assert.Equal(t, variant, tbl.Name)
	}
}

func TestDefaultTable_UnknownVariant(t *testing.T) {
	assert.Equal(t, VariantComparativo, DefaultTable("nope").Name)
}
