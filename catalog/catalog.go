/*
Package catalog holds the static product, supply, agency and recipe tables.

PURPOSE:
  Everything the ledger needs to know about WHAT is being sold and WHAT it
  is made of. The tables are fixed at build time and never change while the
  process runs.

CLOSED SETS:
  ProductID, SupplyID and AgencyID are named string types with one exported
  constant per member. The string values are the keys used in persisted
  snapshots, so they must never be renamed.

  Go has no sum types, so exhaustiveness is enforced by a start-up check
  (see init below): every product must have a recipe and every recipe
  entry must be a defined supply.

RECIPES:
  A recipe is a multiset of supplies consumed per unit sold. A supply may
  appear more than once; consumption accumulates.

SEE ALSO:
  - ledger/ledger.go: Consumes RecipeFor when recording sales
*/
package catalog

import "fmt"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type SupplyID string
type AgencyID string

const (
	Fumarola      ProductID = "fumarola"
	CenizaAle     ProductID = "ceniza_ale"
	BochoCheve    ProductID = "bocho_cheve"
	PataDePerro   ProductID = "pata_de_perro"
	AtlixcoFlores ProductID = "atlixco_flores"
	Serenata      ProductID = "serenata"
)

const (
	EtiquetaFumarola      SupplyID = "etiqueta_fumarola"
	EtiquetaCenizaAle     SupplyID = "etiqueta_ceniza_ale"
	EtiquetaBochoCheve    SupplyID = "etiqueta_bocho_cheve"
	EtiquetaPataDePerro   SupplyID = "etiqueta_pata_de_perro"
	EtiquetaAtlixcoFlores SupplyID = "etiqueta_atlixco_flores"
	EtiquetaSerenata      SupplyID = "etiqueta_serenata"
	CorcholataPlateada    SupplyID = "corcholata_plateada"
	CorcholataDorada      SupplyID = "corcholata_dorada"
	CorcholataVerde       SupplyID = "corcholata_verde"
	CorcholataNegra       SupplyID = "corcholata_negra"
	CorcholataRoja        SupplyID = "corcholata_roja"
	BotellaVacia          SupplyID = "botella_vacia"
)

const (
	LaVottorina   AgencyID = "la_vottorina"
	ElCerrito     AgencyID = "el_cerrito"
	Atlixtour     AgencyID = "atlixtour"
	DonGoyo       AgencyID = "don_goyo"
	Independiente AgencyID = "independiente"
)

// Category groups supplies by what they are physically.
type Category string

const (
	CategoryLabel  Category = "label"
	CategoryCap    Category = "cap"
	CategoryBottle Category = "bottle"
)

// =============================================================================
// ENTRIES
// =============================================================================

// Product is a finished good that can be sold.
type Product struct {
	ID        ProductID `json:"id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"`
}

// Supply is a raw material consumed by recipes.
type Supply struct {
	ID       SupplyID `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Agency is a sales channel a sale is attributed to.
type Agency struct {
	ID   AgencyID `json:"id"`
	Name string   `json:"name"`
}

// Tables are kept in display order; lookups go through the index maps.
var (
	products = []Product{
		{ID: Fumarola, Name: "Fumarola", UnitPrice: 80},
		{ID: CenizaAle, Name: "Ceniza Ale", UnitPrice: 50},
		{ID: BochoCheve, Name: "Bocho-Cheve", UnitPrice: 50},
		{ID: PataDePerro, Name: "Pata de Perro", UnitPrice: 50},
		{ID: AtlixcoFlores, Name: "Atlixco de las flores", UnitPrice: 50},
		{ID: Serenata, Name: "Serenata", UnitPrice: 80},
	}

	supplies = []Supply{
		{ID: EtiquetaFumarola, Name: "Etiqueta Fumarola", Category: CategoryLabel},
		{ID: EtiquetaCenizaAle, Name: "Etiqueta Ceniza Ale", Category: CategoryLabel},
		{ID: EtiquetaBochoCheve, Name: "Etiqueta Bocho-Cheve", Category: CategoryLabel},
		{ID: EtiquetaPataDePerro, Name: "Etiqueta Pata de Perro", Category: CategoryLabel},
		{ID: EtiquetaAtlixcoFlores, Name: "Etiqueta Atlixco de las flores", Category: CategoryLabel},
		{ID: EtiquetaSerenata, Name: "Etiqueta Serenata", Category: CategoryLabel},
		{ID: CorcholataPlateada, Name: "Corcholata Plateada", Category: CategoryCap},
		{ID: CorcholataDorada, Name: "Corcholata Dorada", Category: CategoryCap},
		{ID: CorcholataVerde, Name: "Corcholata Verde", Category: CategoryCap},
		{ID: CorcholataNegra, Name: "Corcholata Negra", Category: CategoryCap},
		{ID: CorcholataRoja, Name: "Corcholata Roja", Category: CategoryCap},
		{ID: BotellaVacia, Name: "Botella Vacía", Category: CategoryBottle},
	}

	agencies = []Agency{
		{ID: LaVottorina, Name: "La Vottorina"},
		{ID: ElCerrito, Name: "El Cerrito"},
		{ID: Atlixtour, Name: "Atlixtour"},
		{ID: DonGoyo, Name: "Don Goyo"},
		{ID: Independiente, Name: "Independiente"},
	}

	recipes = map[ProductID][]SupplyID{
		Fumarola:      {EtiquetaFumarola, CorcholataNegra, BotellaVacia},
		CenizaAle:     {EtiquetaCenizaAle, CorcholataDorada, BotellaVacia},
		BochoCheve:    {EtiquetaBochoCheve, CorcholataVerde, BotellaVacia},
		PataDePerro:   {EtiquetaPataDePerro, CorcholataPlateada, BotellaVacia},
		AtlixcoFlores: {EtiquetaAtlixcoFlores, CorcholataRoja, BotellaVacia},
		Serenata:      {EtiquetaSerenata, CorcholataNegra, BotellaVacia},
	}

	productIndex = make(map[ProductID]int, len(products))
	supplyIndex  = make(map[SupplyID]int, len(supplies))
	agencyIndex  = make(map[AgencyID]int, len(agencies))
)

func init() {
	for i, p := range products {
		productIndex[p.ID] = i
	}
	for i, s := range supplies {
		supplyIndex[s.ID] = i
	}
	for i, a := range agencies {
		agencyIndex[a.ID] = i
	}
	if err := checkRecipes(); err != nil {
		panic(err)
	}
}

// checkRecipes verifies the recipe table is total over products and only
// references defined supplies.
func checkRecipes() error {
	for _, p := range products {
		r, ok := recipes[p.ID]
		if !ok {
			return fmt.Errorf("catalog: product %q has no recipe", p.ID)
		}
		for _, s := range r {
			if _, ok := supplyIndex[s]; !ok {
				return fmt.Errorf("catalog: recipe for %q references unknown supply %q", p.ID, s)
			}
		}
	}
	for id := range recipes {
		if _, ok := productIndex[id]; !ok {
			return fmt.Errorf("catalog: recipe defined for unknown product %q", id)
		}
	}
	return nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (id ProductID) Valid() bool {
	_, ok := productIndex[id]
	return ok
}

func (id SupplyID) Valid() bool {
	_, ok := supplyIndex[id]
	return ok
}

func (id AgencyID) Valid() bool {
	_, ok := agencyIndex[id]
	return ok
}

// LookupProduct returns the catalog entry for id.
func LookupProduct(id ProductID) (Product, error) {
	i, ok := productIndex[id]
	if !ok {
		return Product{}, &UnknownIDError{Kind: KindProduct, ID: string(id)}
	}
	return products[i], nil
}

// LookupSupply returns the catalog entry for id.
func LookupSupply(id SupplyID) (Supply, error) {
	i, ok := supplyIndex[id]
	if !ok {
		return Supply{}, &UnknownIDError{Kind: KindSupply, ID: string(id)}
	}
	return supplies[i], nil
}

// LookupAgency returns the catalog entry for id.
func LookupAgency(id AgencyID) (Agency, error) {
	i, ok := agencyIndex[id]
	if !ok {
		return Agency{}, fmt.Errorf("%w: %q", ErrUnknownAgency, id)
	}
	return agencies[i], nil
}

// RecipeFor returns the supplies consumed by one unit of id.
// The result is a copy; it is nil for ids outside the catalog.
func RecipeFor(id ProductID) []SupplyID {
	r, ok := recipes[id]
	if !ok {
		return nil
	}
	out := make([]SupplyID, len(r))
	copy(out, r)
	return out
}

// ProductName returns the display name, or the raw id if unknown.
func ProductName(id ProductID) string {
	if p, err := LookupProduct(id); err == nil {
		return p.Name
	}
	return string(id)
}

// AgencyName returns the display name, or the raw id if unknown.
func AgencyName(id AgencyID) string {
	if a, err := LookupAgency(id); err == nil {
		return a.Name
	}
	return string(id)
}

// =============================================================================
// LISTINGS - catalog order, always copies
// =============================================================================

func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

func Supplies() []Supply {
	out := make([]Supply, len(supplies))
	copy(out, supplies)
	return out
}

func Agencies() []Agency {
	out := make([]Agency, len(agencies))
	copy(out, agencies)
	return out
}

func ProductIDs() []ProductID {
	out := make([]ProductID, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func SupplyIDs() []SupplyID {
	out := make([]SupplyID, len(supplies))
	for i, s := range supplies {
		out[i] = s.ID
	}
	return out
}
