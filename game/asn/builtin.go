package asn

// Builtin returns the sample shipments the simulator ships with
func Builtin() *Catalog {
	c, err := NewCatalog(builtinASNs)
	if err != nil {
		panic(err)
	}
	return c
}

var builtinASNs = []ASN{
	{ASNNumber: "ASN-2024-001", Type: Inbound, FactoryID: 1, FactoryName: "Factory A", ContainerNumber: "CONT-ABC-12345", ContainerType: Container40ft, Status: StatusFull, PONumber: "PO-2024-0156", Supplier: "Samsung Electronics", ExpectedItems: 500, Weight: 18500},
	{ASNNumber: "ASN-2024-002", Type: Inbound, FactoryID: 2, FactoryName: "Factory B", ContainerNumber: "CONT-XYZ-67890", ContainerType: Container20ft, Status: StatusFull, PONumber: "PO-2024-0157", Supplier: "LG Display", ExpectedItems: 250, Weight: 9200},
	{ASNNumber: "ASN-2024-003", Type: Outbound, FactoryID: 3, FactoryName: "Warehouse C", ContainerNumber: "CONT-DEF-11111", ContainerType: Container40ftHC, Status: StatusEmpty, PONumber: "PO-2024-0158", Supplier: "Hyundai Motors", ExpectedItems: 0, Weight: 3500},
	{ASNNumber: "ASN-2024-004", Type: Inbound, FactoryID: 4, FactoryName: "Factory D", ContainerNumber: "CONT-GHI-22222", ContainerType: Container40ft, Status: StatusFull, PONumber: "PO-2024-0159", Supplier: "SK Hynix", ExpectedItems: 800, Weight: 21000},
	{ASNNumber: "ASN-2024-005", Type: Outbound, FactoryID: 5, FactoryName: "Warehouse E", ContainerNumber: "CONT-JKL-33333", ContainerType: Container20ft, Status: StatusEmpty, PONumber: "PO-2024-0160", Supplier: "Posco Steel", ExpectedItems: 0, Weight: 2800},
	{ASNNumber: "ASN-2024-006", Type: Inbound, FactoryID: 6, FactoryName: "Distribution Center F", ContainerNumber: "CONT-MNO-44444", ContainerType: Container40ft, Status: StatusFull, PONumber: "PO-2024-0161", Supplier: "Coupang Logistics", ExpectedItems: 1200, Weight: 19800},
	{ASNNumber: "ASN-2024-007", Type: Inbound, FactoryID: 1, FactoryName: "Factory A", ContainerNumber: "CONT-PQR-55555", ContainerType: Container40ftHC, Status: StatusFull, PONumber: "PO-2024-0162", Supplier: "Naver Cloud", ExpectedItems: 600, Weight: 20500},
	{ASNNumber: "ASN-2024-008", Type: Outbound, FactoryID: 2, FactoryName: "Factory B", ContainerNumber: "CONT-STU-66666", ContainerType: Container20ft, Status: StatusEmpty, PONumber: "PO-2024-0163", Supplier: "Kakao Corp", ExpectedItems: 0, Weight: 2500},
	{ASNNumber: "ASN-2024-009", Type: Inbound, FactoryID: 3, FactoryName: "Warehouse C", ContainerNumber: "CONT-VWX-77777", ContainerType: Container40ft, Status: StatusFull, PONumber: "PO-2024-0164", Supplier: "Lotte Logistics", ExpectedItems: 900, Weight: 22000},
	{ASNNumber: "ASN-2024-010", Type: Inbound, FactoryID: 4, FactoryName: "Factory D", ContainerNumber: "CONT-YZA-88888", ContainerType: Container40ftHC, Status: StatusFull, PONumber: "PO-2024-0165", Supplier: "GS Retail", ExpectedItems: 750, Weight: 19500},
}
