// Package models defines the entity records and singleton setting values
// managed by the back office.
package models

// Role is the authorization level of a User.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// User represents an application user with credentials.
//
// The password is stored and compared as plain text for parity with the
// legacy data format. This is a known weakness, not a recommendation; see
// the README before reusing this shape anywhere else.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar"`
}

// Contact is a customer lead record. CreatedAt ("YYYY-MM-DD") is used for
// time-bucketed reporting and is defaulted from the clock when absent.
type Contact struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Plan       string `json:"plan"`
	HookupType string `json:"hookupType"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// RentalPlanRates maps a rental plan to its monthly rate in dollars.
var RentalPlanRates = map[string]float64{
	"24-Month Value Plan": 39.99,
	"12-Month Smart Plan": 49.99,
	"6-Month Flex Plan":   59.99,
}

// RateForPlan returns the monthly rate for a plan, or 0 for an unknown plan.
func RateForPlan(plan string) float64 {
	return RentalPlanRates[plan]
}

// RentalStatus is the lifecycle state of a rental agreement.
type RentalStatus string

const (
	RentalActive           RentalStatus = "Active"
	RentalPendingSignature RentalStatus = "Pending Signature"
	RentalTerminated       RentalStatus = "Terminated"
)

// Rental is a rental agreement referencing a Contact by id.
type Rental struct {
	ID                    string       `json:"id"`
	ContactID             string       `json:"contactId"`
	Plan                  string       `json:"plan"`
	MaintenanceOption     string       `json:"maintenanceOption"`
	Status                RentalStatus `json:"status"`
	StartDate             string       `json:"startDate"`
	MonthlyRate           float64      `json:"monthlyRate"`
	RentalPropertyAddress string       `json:"rentalPropertyAddress"`

	EmergencyContactFullName     string `json:"emergencyContactFullName"`
	EmergencyContactRelationship string `json:"emergencyContactRelationship"`
	EmergencyContactAddress      string `json:"emergencyContactAddress"`
	EmergencyContactEmail        string `json:"emergencyContactEmail"`
	EmergencyContactPhone        string `json:"emergencyContactPhone"`

	DeliveryPaymentOption string `json:"deliveryPaymentOption"`

	AckPaymentTerms    bool `json:"ackPaymentTerms"`
	AckRelocationTerms bool `json:"ackRelocationTerms"`
	AckAdditionalTerms bool `json:"ackAdditionalTerms"`

	RenterPrintedName string `json:"renterPrintedName"`
	DigitalSignature  string `json:"digitalSignature"`
}

// RepairStatus is the lifecycle state of a repair request.
type RepairStatus string

const (
	RepairOpen       RepairStatus = "Open"
	RepairInProgress RepairStatus = "In Progress"
	RepairCompleted  RepairStatus = "Completed"
	RepairCancelled  RepairStatus = "Cancelled"
)

// Repair is a service request referencing a Contact by id.
type Repair struct {
	ID               string       `json:"id"`
	ContactID        string       `json:"contactId"`
	Appliance        string       `json:"appliance"`
	IssueDescription string       `json:"issueDescription"`
	Status           RepairStatus `json:"status"`
	ReportedDate     string       `json:"reportedDate"`

	AccountNumber        string   `json:"accountNumber,omitempty"`
	ServiceAddress       string   `json:"serviceAddress"`
	City                 string   `json:"city"`
	ZipCode              string   `json:"zipCode"`
	IssueType            string   `json:"issueType"`
	ErrorCodes           string   `json:"errorCodes,omitempty"`
	Urgency              string   `json:"urgency"`
	PreferredServiceDate string   `json:"preferredServiceDate,omitempty"`
	PreferredTimeOfDay   string   `json:"preferredTimeOfDay"`
	ImageURLs            []string `json:"imageUrls,omitempty"`
	AdditionalInfo       string   `json:"additionalInfo,omitempty"`
	AccessInstructions   string   `json:"accessInstructions,omitempty"`

	ScheduledDate string `json:"scheduledDate,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// InventoryStatus is the availability state of an inventory item.
//
// Sold is a derived value: it is owned by the sale records referencing the
// item, not by direct edits. The sales service is the only place that flips
// an item to or from Sold as a side effect.
type InventoryStatus string

const (
	StatusAvailable      InventoryStatus = "Available"
	StatusSold           InventoryStatus = "Sold"
	StatusInRepair       InventoryStatus = "In Repair"
	StatusDecommissioned InventoryStatus = "Decommissioned"
)

// InventoryItem is a physical asset.
//
// Vendor holds the legacy name-based vendor reference; VendorID is the
// id-based reference new records should use. Renaming a vendor detaches the
// name join on historical records, which is why both are kept.
type InventoryItem struct {
	ID           string          `json:"id"`
	PurchaseID   string          `json:"purchaseId"`
	PurchaseDate string          `json:"purchaseDate"`
	Vendor       string          `json:"vendor"`
	VendorID     string          `json:"vendorId,omitempty"`
	ItemType     string          `json:"itemType"`
	MakeModel    string          `json:"makeModel"`
	SerialNumber string          `json:"serialNumber"`
	Condition    string          `json:"condition"`
	PurchaseCost float64         `json:"purchaseCost"`
	Status       InventoryStatus `json:"status"`
	Notes        string          `json:"notes,omitempty"`
}

// Sale records the sale of exactly one InventoryItem, referenced by ItemID.
type Sale struct {
	ID             string  `json:"id"`
	SaleID         string  `json:"saleId"`
	SaleDate       string  `json:"saleDate"`
	ItemID         string  `json:"itemId"`
	SalePrice      float64 `json:"salePrice"`
	BuyerName      string  `json:"buyerName"`
	BuyerContact   string  `json:"buyerContact"`
	BuyerEmail     string  `json:"buyerEmail"`
	BuyerAddress   string  `json:"buyerAddress"`
	BillOfSaleLink string  `json:"billOfSaleLink"`
	Notes          string  `json:"notes,omitempty"`
}

// Vendor is a supplier record.
type Vendor struct {
	ID            string `json:"id"`
	VendorID      string `json:"vendorId"`
	VendorName    string `json:"vendorName"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Website       string `json:"website"`
	Notes         string `json:"notes,omitempty"`
}

// SmsSettings is the SMS gateway configuration singleton.
type SmsSettings struct {
	Login    string `json:"login"`
	Password string `json:"password,omitempty"`
	Domain   string `json:"domain"`
	Protocol string `json:"protocol"`
	Port     string `json:"port"`
}

func (u *User) EntityID() string { return u.ID }

func (u *User) SetEntityID(id string) { u.ID = id }

func (c *Contact) EntityID() string { return c.ID }

func (c *Contact) SetEntityID(id string) { c.ID = id }

func (r *Rental) EntityID() string { return r.ID }

func (r *Rental) SetEntityID(id string) { r.ID = id }

func (r *Repair) EntityID() string { return r.ID }

func (r *Repair) SetEntityID(id string) { r.ID = id }

func (i *InventoryItem) EntityID() string { return i.ID }

func (i *InventoryItem) SetEntityID(id string) { i.ID = id }

func (s *Sale) EntityID() string { return s.ID }

func (s *Sale) SetEntityID(id string) { s.ID = id }

func (v *Vendor) EntityID() string { return v.ID }

func (v *Vendor) SetEntityID(id string) { v.ID = id }
