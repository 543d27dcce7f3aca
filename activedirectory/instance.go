package activedirectory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Instance is a bound connection to one Active Directory domain controller.
type Instance struct {
	BaseDN               string
	DomainControllerFQDN string
	PageSize             uint32
	ldapConnection       *ldap.Conn
}

// Computer is one computer account as returned by a directory search.
type Computer struct {
	Name        string
	DNSHostName string
}

// HostName returns the identifier the sweep should target: the registered
// DNS name when the account has one, the SAM-style short name otherwise.
func (c Computer) HostName() string {
	if c.DNSHostName != "" {
		return c.DNSHostName
	}
	return c.Name
}

func NewInstance(baseDN string, domainControllerFQDN string, pageSize uint32) *Instance {
	return &Instance{
		BaseDN:               baseDN,
		DomainControllerFQDN: domainControllerFQDN,
		PageSize:             pageSize,
	}
}

// Connect to the Active Directory Domain Controller
func (ad *Instance) Connect(username, password string) error {
	bindString := fmt.Sprintf("ldap://%s:389", ad.DomainControllerFQDN)
	conn, err := ldap.DialURL(bindString)
	if err != nil {
		return fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	// TODO: LDAPS, IWA/GSSAPI, etc
	if err := conn.Bind(username, password); err != nil {
		conn.Close()
		return fmt.Errorf("failed to bind to LDAP server: %w", err)
	}

	if _, err := conn.WhoAmI(nil); err != nil {
		conn.Close()
		return fmt.Errorf("failed to verify LDAP bind: %w", err)
	}

	ad.ldapConnection = conn
	return nil
}

func (ad *Instance) Close() {
	if ad.ldapConnection != nil {
		ad.ldapConnection.Close()
		ad.ldapConnection = nil
	}
}

// SubtreeExists checks that dn names an existing directory subtree with a
// base-scope read of the object itself.
func (ad *Instance) SubtreeExists(dn string) error {
	request := ldap.NewSearchRequest(
		dn,
		ldap.ScopeBaseObject,
		ldap.NeverDerefAliases,
		0, 0, false,
		"(objectClass=*)",
		[]string{"distinguishedName"},
		nil,
	)

	result, err := ad.ldapConnection.Search(request)
	if err != nil {
		return fmt.Errorf("organizational unit %s not found: %w", dn, err)
	}
	if len(result.Entries) == 0 {
		return fmt.Errorf("organizational unit %s not found", dn)
	}
	return nil
}

// Computers runs a paged subtree search for computer accounts matching
// filter, scoped to ouDN when given and the instance BaseDN otherwise.
// Results are sorted by account name.
func (ad *Instance) Computers(filter Filter, ouDN string) ([]Computer, error) {
	baseDN := ad.BaseDN
	if ouDN != "" {
		baseDN = ouDN
	}

	request := ldap.NewSearchRequest(
		baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter.String(),
		[]string{"name", "dNSHostName"},
		nil,
	)

	results, err := ad.ldapConnection.SearchWithPaging(request, ad.PageSize)
	if err != nil {
		return nil, fmt.Errorf("LDAP search failed: %w", err)
	}

	computers := make([]Computer, 0, len(results.Entries))
	for _, entry := range results.Entries {
		computers = append(computers, Computer{
			Name:        entry.GetAttributeValue("name"),
			DNSHostName: entry.GetAttributeValue("dNSHostName"),
		})
	}

	sort.Slice(computers, func(i, j int) bool {
		return strings.ToLower(computers[i].Name) < strings.ToLower(computers[j].Name)
	})

	return computers, nil
}

// ComputersMatching resolves sweep targets from the directory. A non-empty
// nameFragment selects computers whose name contains it; an empty fragment
// selects every computer whose operating system attribute contains "server".
func (ad *Instance) ComputersMatching(nameFragment, ouDN string) ([]string, error) {
	var filter Filter
	if nameFragment != "" {
		filter = And(
			Eq("objectClass", "computer"),
			Contains("name", nameFragment),
		)
	} else {
		filter = And(
			Eq("objectClass", "computer"),
			Contains("operatingSystem", "server"),
		)
	}

	computers, err := ad.Computers(filter, ouDN)
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(computers))
	for _, c := range computers {
		hosts = append(hosts, c.HostName())
	}
	return hosts, nil
}
