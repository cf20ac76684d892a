package procure

import (
	"fmt"
	"sort"
)

// DocumentStore holds the six document collections, each keyed by id.
// Documents are stored and returned by value; items are copied at
// creation and never aliased across documents. The store itself is not
// goroutine safe: Service serializes access.
type DocumentStore struct {
	requests  map[string]PurchaseRequest
	orders    map[string]PurchaseOrder
	receipts  map[string]GoodsReceiptNote
	invoices  map[string]SupplierInvoice
	transfers map[string]StockTransfer
	returns   map[string]PurchaseReturn
}

// NewDocumentStore builds an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		requests:  make(map[string]PurchaseRequest),
		orders:    make(map[string]PurchaseOrder),
		receipts:  make(map[string]GoodsReceiptNote),
		invoices:  make(map[string]SupplierInvoice),
		transfers: make(map[string]StockTransfer),
		returns:   make(map[string]PurchaseReturn),
	}
}

func (s *DocumentStore) GetRequest(id string) (PurchaseRequest, error) {
	doc, ok := s.requests[id]
	if !ok {
		return PurchaseRequest{}, fmt.Errorf("%w: purchase request %s", ErrReferenceNotFound, id)
	}
	return doc, nil
}

func (s *DocumentStore) PutRequest(doc PurchaseRequest) { s.requests[doc.ID] = doc }

func (s *DocumentStore) GetOrder(id string) (PurchaseOrder, error) {
	doc, ok := s.orders[id]
	if !ok {
		return PurchaseOrder{}, fmt.Errorf("%w: purchase order %s", ErrReferenceNotFound, id)
	}
	return doc, nil
}

func (s *DocumentStore) PutOrder(doc PurchaseOrder) { s.orders[doc.ID] = doc }

func (s *DocumentStore) GetReceipt(id string) (GoodsReceiptNote, error) {
	doc, ok := s.receipts[id]
	if !ok {
		return GoodsReceiptNote{}, fmt.Errorf("%w: goods receipt %s", ErrReferenceNotFound, id)
	}
	return doc, nil
}

func (s *DocumentStore) PutReceipt(doc GoodsReceiptNote) { s.receipts[doc.ID] = doc }

func (s *DocumentStore) GetInvoice(id string) (SupplierInvoice, error) {
	doc, ok := s.invoices[id]
	if !ok {
		return SupplierInvoice{}, fmt.Errorf("%w: supplier invoice %s", ErrReferenceNotFound, id)
	}
	return doc, nil
}

func (s *DocumentStore) PutInvoice(doc SupplierInvoice) { s.invoices[doc.ID] = doc }

func (s *DocumentStore) GetTransfer(id string) (StockTransfer, error) {
	doc, ok := s.transfers[id]
	if !ok {
		return StockTransfer{}, fmt.Errorf("%w: stock transfer %s", ErrReferenceNotFound, id)
	}
	return doc, nil
}

func (s *DocumentStore) PutTransfer(doc StockTransfer) { s.transfers[doc.ID] = doc }

func (s *DocumentStore) GetReturn(id string) (PurchaseReturn, error) {
	doc, ok := s.returns[id]
	if !ok {
		return PurchaseReturn{}, fmt.Errorf("%w: purchase return %s", ErrReferenceNotFound, id)
	}
	return doc, nil
}

func (s *DocumentStore) PutReturn(doc PurchaseReturn) { s.returns[doc.ID] = doc }

// List accessors return newest-first copies.

func (s *DocumentStore) ListRequests() []PurchaseRequest {
	out := make([]PurchaseRequest, 0, len(s.requests))
	for _, doc := range s.requests {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) ListOrders() []PurchaseOrder {
	out := make([]PurchaseOrder, 0, len(s.orders))
	for _, doc := range s.orders {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) ListReceipts() []GoodsReceiptNote {
	out := make([]GoodsReceiptNote, 0, len(s.receipts))
	for _, doc := range s.receipts {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) ListInvoices() []SupplierInvoice {
	out := make([]SupplierInvoice, 0, len(s.invoices))
	for _, doc := range s.invoices {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) ListTransfers() []StockTransfer {
	out := make([]StockTransfer, 0, len(s.transfers))
	for _, doc := range s.transfers {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *DocumentStore) ListReturns() []PurchaseReturn {
	out := make([]PurchaseReturn, 0, len(s.returns))
	for _, doc := range s.returns {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
