package rules

import "github.com/flujo-dev/flujo/internal/model"

// Built-in rule table variants. The two disagree on several vendors, so a
// deployment picks exactly one.
const (
	VariantDetallado   = "detallado"
	VariantComparativo = "comparativo"
)

// Variants lists the built-in table names.
func Variants() []string {
	return []string{VariantDetallado, VariantComparativo}
}

// Labels shared by both variants.
const (
	LabelLineaCredito      model.Classification = "LINEA DE CREDITO"
	LabelFinanciamiento    model.Classification = "FINANCIAMIENTO EXTERNO"
	LabelProveedores       model.Classification = "PROVEEDORES NACIONALES"
	LabelRemuneraciones    model.Classification = "REMUNERACIONES POR PAGAR"
	LabelEducacion         model.Classification = "GASTOS EDUCACION"
	LabelFacturasNacional  model.Classification = "FACTURAS POR COBRAR NACIONAL"
	LabelDepositoEfectivo  model.Classification = "DEPOSITO EFECTIVO"
	LabelTransbank         model.Classification = "SERVICIOS TRANSBANK"
	LabelServiciosExternos model.Classification = "SERVICIOS EXTERNOS"
	LabelComisiones        model.Classification = "GASTOS Y COMISIONES BANCARIAS ( BANCO CHILE - SECURITY )"
	LabelImpuestos         model.Classification = "IMPUESTOS"
	LabelCreditoBanco      model.Classification = "CREDITO BANCO DE CHILE"
	LabelTarjeta           model.Classification = "PAGO TARJETA DE CREDITO"
	LabelImposiciones      model.Classification = "IMPOSICIONES"
)

// Labels specific to the detallado variant.
const (
	LabelFacturasFlujo   model.Classification = "1.01.05.01 - Facturas por cobrar Nacional- FLUJO"
	LabelHonorariosPagar model.Classification = "HONORARIOS POR PAGAR"
	LabelArriendoOficina model.Classification = "2.01.07.01-Proveedores Arrdo  Oficina , estacionamiento"
)

// Labels specific to the comparativo variant.
const (
	LabelFacturasFlujoComp      model.Classification = "1.01.05.01-FACTURAS POR COBRAR NACIONAL- FLUJO"
	LabelProveedoresFijos       model.Classification = "2.01.07.01-PROVEEDORES NACIONALES FIJOS"
	LabelProveedoresExistencias model.Classification = "2.01.07.01-PROVEEDORES NACIONALES EXISTENCIAS"
	LabelHonorarios             model.Classification = "HONORARIOS"
	LabelArriendoOficinaComp    model.Classification = "2.01.07.01-PROVEEDORES ARRDO  OFICINA , ESTACIONAMIENTO ,KAME"
)

var landlords = []string{"INVERSIONES ISLA KENT SPA", "INMOBILIARIA MONJITAS SA", "MALSCH Y COMPANIA S.A."}

// DefaultTable returns the named built-in table with normalized keywords.
// Unknown names fall back to the comparativo table.
func DefaultTable(variant string) *Table {
	switch variant {
	case VariantDetallado:
		return detalladoTable().Normalized()
	default:
		return comparativoTable().Normalized()
	}
}

// IsVariant reports whether name is a built-in table.
func IsVariant(name string) bool {
	return name == VariantDetallado || name == VariantComparativo
}

func detalladoTable() *Table {
	return &Table{
		Name: VariantDetallado,
		Credit: []Rule{
			{Label: LabelFacturasFlujo, Keywords: []string{"FACTURA", "COBRAR", "FLUJO", "APP-TRASPASO", "PAGO", "DEPOSITO", "DEP.CHEQ", "DEPOSITO EN EFECTIVO"}},
			{Label: LabelLineaCredito, Keywords: []string{"LINEA DE CREDITO"}},
			{Label: LabelFinanciamiento, Keywords: []string{"RECICLAJES ECOLOGICOS DE CHILE LIMITADA"}},
			{Label: LabelFacturasFlujo, Keywords: []string{"TRASPASO DE"}},
		},
		Debit: append([]Rule{
			{Label: LabelProveedores, Keywords: []string{"PROVEEDORES"}},
		}, commonDebitRules(LabelHonorariosPagar, LabelArriendoOficina, "TRASPASO DE:RECICLAJES ECOLOGICOS DE CHILE LIMITADA")...),
	}
}

func comparativoTable() *Table {
	return &Table{
		Name: VariantComparativo,
		Credit: []Rule{
			{Label: LabelFacturasFlujoComp, Keywords: []string{"FACTURA", "COBRAR", "FLUJO", "TRASPASO DE", "APP-TRASPASO", "PAGO", "DEPOSITO", "DEP.CHEQ", "DEPOSITO EN EFECTIVO"}},
			{Label: LabelLineaCredito, Keywords: []string{"LINEA DE CREDITO"}},
		},
		Debit: append([]Rule{
			{Label: LabelProveedoresFijos, Keywords: []string{"PAGO: PROVEEDORES"}},
			{Label: LabelProveedoresExistencias, Keywords: []string{"PROVISION: PROVEEDORES"}},
			{Label: LabelProveedores, Keywords: []string{"PROVEEDORES"}},
		}, commonDebitRules(LabelHonorarios, LabelArriendoOficinaComp, "Traspaso De: Reciclajes Ecologicos De Chile Limitada")...),
	}
}

// commonDebitRules is the debit tail both variants share after their
// supplier rules; the fees and office-rent labels and the spelling of the
// external-financing transfer differ.
func commonDebitRules(fees, rent model.Classification, financing string) []Rule {
	return []Rule{
		{Label: LabelRemuneraciones, Keywords: []string{"SUELDOS", "REMUNERACION"}},
		{Label: LabelProveedores, Keywords: []string{"SERVIPAG", "AGUA", "DISTRIBUIDORA", "TRASPASO A"}},
		{Label: fees, Keywords: []string{"HONORARIOS"}},
		{Label: LabelEducacion, Keywords: []string{"INSTITUTO", "COLEGIO"}},
		{Label: LabelFacturasNacional, Keywords: []string{"CONSTRUCCION", "SEPCO"}},
		{Label: LabelLineaCredito, Keywords: []string{"LINEA"}},
		{Label: LabelDepositoEfectivo, Keywords: []string{"EFECTIVO"}},
		{Label: LabelTransbank, Keywords: []string{"VIRTUALPOS"}},
		{Label: LabelServiciosExternos, Keywords: []string{"BRUSSELS"}},
		{Label: LabelComisiones, Keywords: []string{"COMISION", "SEGURO"}},
		{Label: LabelImpuestos, Keywords: []string{"PAGO EN SII"}},
		{Label: LabelCreditoBanco, Keywords: []string{"PAGO DE CREDITOS M/N"}},
		{Label: LabelTarjeta, Keywords: []string{"PAGO AUTOMATICO TARJETA DE CREDITO"}},
		{Label: rent, Keywords: landlords},
		{Label: LabelImposiciones, Keywords: []string{"PAGO INSTITUCIONES PREVISIONALES"}},
		{Label: LabelFinanciamiento, Keywords: []string{financing}},
	}
}
