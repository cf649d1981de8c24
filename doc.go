// Copyright 2026 prftrack. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package prf-app-excel synchronises purchase requests (PRFs) held in a relational database with a PRF register
workbook stored in OneDrive or SharePoint, using the Microsoft Graph workbook API.

prf-app-excel can be used from the command line but is really intended to be invoked by the PRF tracking
application whenever a purchase request is saved or reviewed.

prf-app-excel supports the following commands:

  - authorise, to sign in with a device code and cache the delegated access token
  - push, to write a purchase request to the matching worksheet row, or append a new row
  - pull, to merge the worksheet values for a purchase request back into the database
  - test-access, to check that the workbook and worksheet can be located and read
  - version, to display the current version
*/
package excel
