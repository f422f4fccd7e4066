package models

type TripState string

const (
	TripStateLoading           TripState = "LOADING"
	TripStateLoaded            TripState = "LOADED"
	TripStateDeparted          TripState = "DEPARTED"
	TripStateArrived           TripState = "ARRIVED"
	TripStateCustoms           TripState = "CUSTOMS"
	TripStateReceived          TripState = "RECEIVED"
	TripStateDelivered         TripState = "DELIVERED"
	TripStateUnloaded          TripState = "UNLOADED"
	TripStatePartiallyUnloaded TripState = "PARTIALLY_UNLOADED"
)

// legacyTripStates maps status strings still sent by older clients (the
// previous system was French-labelled) onto the current states. This is an
// explicit compatibility table, not a catch-all: ParseTripState reports
// whether the input was recognized so callers can log unknown values.
var legacyTripStates = map[string]TripState{
	"CHARGEMENT":        TripStateLoading,
	"CHARGE":            TripStateLoaded,
	"EN_ROUTE":          TripStateDeparted,
	"ARRIVE":            TripStateArrived,
	"DOUANE":            TripStateCustoms,
	"RECEPTIONNE":       TripStateReceived,
	"LIVRE":             TripStateDelivered,
	"DECHARGE":          TripStateUnloaded,
	"DECHARGE_PARTIEL":  TripStatePartiallyUnloaded,
	"DECHARGEMENT":      TripStateUnloaded,
	"LIVRAISON_PARTIEL": TripStatePartiallyUnloaded,
}

var tripStates = map[string]TripState{
	string(TripStateLoading):           TripStateLoading,
	string(TripStateLoaded):            TripStateLoaded,
	string(TripStateDeparted):          TripStateDeparted,
	string(TripStateArrived):           TripStateArrived,
	string(TripStateCustoms):           TripStateCustoms,
	string(TripStateReceived):          TripStateReceived,
	string(TripStateDelivered):         TripStateDelivered,
	string(TripStateUnloaded):          TripStateUnloaded,
	string(TripStatePartiallyUnloaded): TripStatePartiallyUnloaded,
}

// ParseTripState maps a requested status string (current or legacy) to a trip
// state. Unrecognized values fall back to LOADING with known=false; the
// fallback preserves the pass-through behavior older clients depend on.
func ParseTripState(s string) (state TripState, known bool) {
	if st, ok := tripStates[s]; ok {
		return st, true
	}
	if st, ok := legacyTripStates[s]; ok {
		return st, true
	}
	return TripStateLoading, false
}

type CheckpointName string

const (
	CheckpointLoading   CheckpointName = "Loading"
	CheckpointLoaded    CheckpointName = "Loaded"
	CheckpointDeparted  CheckpointName = "Departed"
	CheckpointArrived   CheckpointName = "Arrived"
	CheckpointCustoms   CheckpointName = "Customs"
	CheckpointReceived  CheckpointName = "Received"
	CheckpointDelivered CheckpointName = "Delivered"
	CheckpointUnloaded  CheckpointName = "Unloaded"
)

// CheckpointNames is the fixed, ordered milestone set created with every trip.
var CheckpointNames = []CheckpointName{
	CheckpointLoading,
	CheckpointLoaded,
	CheckpointDeparted,
	CheckpointArrived,
	CheckpointCustoms,
	CheckpointReceived,
	CheckpointDelivered,
	CheckpointUnloaded,
}

type DeliveryStatus string

const (
	DeliveryStatusNotDelivered DeliveryStatus = "NOT_DELIVERED"
	DeliveryStatusDelivered    DeliveryStatus = "DELIVERED"
)

type MovementType string

const (
	MovementTypeIn         MovementType = "IN"
	MovementTypeOut        MovementType = "OUT"
	MovementTypeTransfer   MovementType = "TRANSFER"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

type TruckStatus string

const (
	TruckStatusAvailable    TruckStatus = "Available"
	TruckStatusEnRoute      TruckStatus = "EnRoute"
	TruckStatusMaintenance  TruckStatus = "Maintenance"
	TruckStatusOutOfService TruckStatus = "OutOfService"
)

type ProductCategory string

const (
	ProductCategoryGasoline  ProductCategory = "Gasoline"
	ProductCategoryDiesel    ProductCategory = "Diesel"
	ProductCategoryKerosene  ProductCategory = "Kerosene"
	ProductCategoryLubricant ProductCategory = "Lubricant"
)

type RoleName string

const (
	RoleAdmin      RoleName = "Admin"
	RoleManager    RoleName = "Manager"
	RoleDispatcher RoleName = "Dispatcher"
	RoleDriver     RoleName = "Driver"
)

// PrivilegedRoles bypass the responsible-party check on trip mutations.
var PrivilegedRoles = []RoleName{RoleAdmin, RoleManager}

type ObligationType string

const (
	ObligationTypeTransportCost ObligationType = "TransportCost"
	ObligationTypeCustomsFee    ObligationType = "CustomsFee"
	ObligationTypeCustomsStamp  ObligationType = "CustomsStamp"
)

type ObligationStatus string

const (
	ObligationStatusPending   ObligationStatus = "Pending"
	ObligationStatusPaid      ObligationStatus = "Paid"
	ObligationStatusCancelled ObligationStatus = "Cancelled"
)

type AlertEvent string

const (
	AlertEventClientAssigned  AlertEvent = "ClientAssigned"
	AlertEventClientDelivered AlertEvent = "ClientDelivered"
	AlertEventTripDeclared    AlertEvent = "TripDeclared"
	AlertEventTripReleased    AlertEvent = "TripReleased"
)

type AlertPublishStatus string

const (
	AlertPublishStatusPending    AlertPublishStatus = "PENDING"
	AlertPublishStatusProcessing AlertPublishStatus = "PROCESSING"
	AlertPublishStatusPublished  AlertPublishStatus = "PUBLISHED"
	AlertPublishStatusFailed     AlertPublishStatus = "FAILED"
	AlertPublishStatusDead       AlertPublishStatus = "DEAD"
)
