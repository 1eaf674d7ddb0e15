package layout

// Canvas dimensions shared by the built-in zones
const (
	CanvasWidth  = 1600
	CanvasHeight = 900
)

// FactoryA is the default zone: a row of yard bays above the warehouse and
// the warehouse dock doors below it.
func FactoryA() *ZoneConfig {
	return factoryZone("factory_a", "Factory A: 10 yard bays and 10 dock doors", 10, 10)
}

// FactoryB is a small site with 5 yard bays and 3 dock doors
func FactoryB() *ZoneConfig {
	return factoryZone("factory_b", "Factory B: 5 yard bays and 3 dock doors", 5, 3)
}

// FactoryC is a medium site with 7 yard bays and 5 dock doors
func FactoryC() *ZoneConfig {
	return factoryZone("factory_c", "Factory C: 7 yard bays and 5 dock doors", 7, 5)
}

func factoryZone(name, description string, yardBays, dockDoors int) *ZoneConfig {
	return &ZoneConfig{
		Name:        name,
		Description: description,
		Canvas:      Size{Width: CanvasWidth, Height: CanvasHeight},
		Gate:        Point{X: 20, Y: 880},
		SafeZoneY:   520,
		Obstacle:    &Rect{X: 650, Y: 380, Width: 300, Height: 100},
		Areas: []AreaSpec{
			{Area: Top, Origin: Point{X: 50, Y: 80}, SlotWidth: 140, SlotHeight: 180, Gap: 10, Count: yardBays},
			{Area: Bottom, Origin: Point{X: 50, Y: 620}, SlotWidth: 140, SlotHeight: 180, Gap: 10, Count: dockDoors, FirstID: 415},
		},
	}
}

// Perimeter is a yard with bays on all four sides of a central warehouse
func Perimeter() *ZoneConfig {
	return &ZoneConfig{
		Name:        "perimeter",
		Description: "Bays on every side of a central warehouse",
		Canvas:      Size{Width: CanvasWidth, Height: CanvasHeight},
		Gate:        Point{X: 240, Y: 880},
		SafeZoneY:   540,
		Obstacle:    &Rect{X: 600, Y: 330, Width: 400, Height: 140},
		Areas: []AreaSpec{
			{Area: TopYard, Origin: Point{X: 340, Y: 40}, Gap: 20, Count: 6},
			{Area: BottomYard, Origin: Point{X: 340, Y: 700}, Gap: 20, Count: 6},
			{Area: Left, Origin: Point{X: 40, Y: 120}, Gap: 20, Count: 3},
			{Area: Right, Origin: Point{X: 1400, Y: 120}, Gap: 20, Count: 3},
		},
	}
}

// BuiltinZones returns every zone shipped with the binary keyed by name
func BuiltinZones() map[string]*ZoneConfig {
	zones := map[string]*ZoneConfig{}
	for _, z := range []*ZoneConfig{FactoryA(), FactoryB(), FactoryC(), Perimeter()} {
		zones[z.Name] = z
	}
	return zones
}
